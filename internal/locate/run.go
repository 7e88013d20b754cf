package locate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/placetag-cli/internal/store"
)

// Report is the outcome of a Run.
type Report struct {
	RunID   string           `json:"run_id"`
	Results []Result         `json:"results"`
	Summary store.RunSummary `json:"summary"`
}

// Run processes items with at most concurrency in flight and records the
// run in the keyword ledger. Results are in input order. Per-item failures
// are reported in the results, not returned.
func (l *Locator) Run(ctx context.Context, dir string, items []string, concurrency int) (*Report, error) {
	log := zap.L().With(zap.String("component", "locate"), zap.String("dir", dir))
	if concurrency < 1 {
		concurrency = 1
	}

	run, err := l.Keywords.StartRun(ctx, dir)
	if err != nil {
		return nil, eris.Wrap(err, "locate: start run")
	}

	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.Process(gctx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "locate: run")
	}

	summary := Summarize(results)
	if err := l.Keywords.FinishRun(ctx, run.ID, summary); err != nil {
		return nil, eris.Wrap(err, "locate: finish run")
	}

	log.Info("run complete",
		zap.String("run_id", run.ID),
		zap.Int("total", summary.Total),
		zap.Int("tagged", summary.Tagged),
		zap.Int("already_tagged", summary.AlreadyTagged),
		zap.Int("no_gps", summary.NoGPS),
		zap.Int("not_found", summary.NotFound),
		zap.Int("failed", summary.Failed),
	)

	return &Report{RunID: run.ID, Results: results, Summary: summary}, nil
}

// Summarize counts results by status.
func Summarize(results []Result) store.RunSummary {
	s := store.RunSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusTagged:
			s.Tagged++
		case StatusAlreadyTagged:
			s.AlreadyTagged++
		case StatusNoGPS:
			s.NoGPS++
		case StatusNotFound:
			s.NotFound++
		case StatusError:
			s.Failed++
		}
	}
	return s
}
