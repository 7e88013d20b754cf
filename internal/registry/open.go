package registry

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// LoadFailure records a dataset that could not be opened.
type LoadFailure struct {
	Dataset string
	Err     error
}

// Opener opens one dataset. OpenShapefile is the production opener.
type Opener func(geo.Dataset) (*geo.Store, error)

// Open loads descriptors concurrently (at most concurrency at a time) and
// returns the stores that opened, in descriptor order, with a failure
// entry for every one that did not. A failed dataset never stops the
// others. The error is non-nil only when ctx is cancelled.
func Open(ctx context.Context, descs []Descriptor, concurrency int) ([]*geo.Store, []LoadFailure, error) {
	return OpenWith(ctx, descs, concurrency, geo.OpenShapefile)
}

// OpenWith is Open with a custom opener.
func OpenWith(ctx context.Context, descs []Descriptor, concurrency int, open Opener) ([]*geo.Store, []LoadFailure, error) {
	log := zap.L().With(zap.String("component", "registry"))
	if concurrency < 1 {
		concurrency = 1
	}

	stores := make([]*geo.Store, len(descs))
	errs := make([]error, len(descs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, d := range descs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := d.Dataset()
			if err != nil {
				errs[i] = &geo.ConfigurationError{Dataset: d.Name, Err: err}
				return nil
			}
			s, err := open(ds)
			if err != nil {
				errs[i] = err
				return nil // other datasets still load
			}
			stores[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "registry: open datasets")
	}

	var (
		out      []*geo.Store
		failures []LoadFailure
	)
	for i, d := range descs {
		if errs[i] != nil {
			log.Warn("dataset failed to load", zap.String("dataset", d.Name), zap.Error(errs[i]))
			failures = append(failures, LoadFailure{Dataset: d.Name, Err: errs[i]})
			continue
		}
		out = append(out, stores[i])
	}

	log.Info("datasets opened", zap.Int("loaded", len(out)), zap.Int("failed", len(failures)))
	return out, failures, nil
}
