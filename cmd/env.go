package main

import (
	"context"
	"errors"
	"io/fs"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/config"
	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/polyfile"
	"github.com/sells-group/placetag-cli/internal/registry"
	"github.com/sells-group/placetag-cli/internal/resolve"
)

// resolverEnv is a resolver plus the datasets that failed to load.
type resolverEnv struct {
	Resolver *resolve.Resolver
	Failures []registry.LoadFailure
}

// buildResolver loads every configured source. Missing optional sources
// (the polygon directory, the territory file, the registry itself) are
// logged and left out; a dataset that fails to load is reported in
// Failures and the others are still used.
func buildResolver(ctx context.Context, c *config.Config) (*resolverEnv, error) {
	log := zap.L().With(zap.String("component", "cmd"))
	var opts []resolve.Option

	custom, err := polyfile.LoadDir(c.Polygons.Dir)
	switch {
	case err == nil:
		opts = append(opts, resolve.WithCustom(custom))
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("custom polygon directory not found", zap.String("dir", c.Polygons.Dir))
	default:
		return nil, eris.Wrap(err, "load custom polygons")
	}

	var failures []registry.LoadFailure
	descs, err := registry.Load(c.Datasets.Registry)
	switch {
	case err == nil:
		stores, fails, err := registry.Open(ctx, descs, c.Datasets.LoadConcurrency)
		if err != nil {
			return nil, err
		}
		failures = fails
		opts = append(opts, resolve.WithStores(stores...))
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("dataset registry not found", zap.String("path", c.Datasets.Registry))
	default:
		return nil, eris.Wrap(err, "load dataset registry")
	}

	territories, err := polyfile.LoadTerritories(c.Territories.Path)
	switch {
	case err == nil:
		opts = append(opts, resolve.WithTerritories(territories))
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("territory file not found", zap.String("path", c.Territories.Path))
	default:
		return nil, eris.Wrap(err, "load territories")
	}

	return &resolverEnv{Resolver: resolve.New(opts...), Failures: failures}, nil
}

// parsePoint accepts "lat lon" as two arguments or "lat,lon" as one.
func parsePoint(args []string) (geo.GeoPoint, error) {
	if len(args) == 1 {
		args = strings.Split(args[0], ",")
	}
	if len(args) != 2 {
		return geo.GeoPoint{}, eris.New("expected <lat> <lon> or <lat>,<lon>")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return geo.GeoPoint{}, eris.Wrapf(err, "invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return geo.GeoPoint{}, eris.Wrapf(err, "invalid longitude %q", args[1])
	}
	return geo.NewGeoPoint(lat, lon)
}
