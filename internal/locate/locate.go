// Package locate tags images with the place and territories containing
// their GPS position.
package locate

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/photo"
	"github.com/sells-group/placetag-cli/internal/resolve"
	"github.com/sells-group/placetag-cli/internal/store"
	"github.com/sells-group/placetag-cli/internal/tags"
)

// Status is the outcome of processing one item.
type Status string

// Item outcomes.
const (
	StatusAlreadyTagged Status = "already_tagged"
	StatusNoGPS         Status = "no_gps"
	StatusNotFound      Status = "not_found"
	StatusTagged        Status = "tagged"
	StatusError         Status = "error"
)

// Resolver is the subset of *resolve.Resolver used here.
type Resolver interface {
	ResolvePlace(p geo.GeoPoint) (resolve.Place, bool)
	ResolveTerritories(p geo.GeoPoint) []string
}

// GPSReader reads an item's position. photo.ReadGPS is the default.
type GPSReader func(item string) (geo.GeoPoint, error)

// Result is the outcome for one item.
type Result struct {
	Item        string         `json:"item"`
	Status      Status         `json:"status"`
	Place       *resolve.Place `json:"place,omitempty"`
	Territories []string       `json:"territories,omitempty"`
	Added       []string       `json:"added,omitempty"`
	Err         error          `json:"-"`
}

// Locator resolves and records tags for images.
type Locator struct {
	Resolver    Resolver
	Keywords    store.KeywordStore
	GPS         GPSReader
	Territories bool
}

// New returns a Locator reading GPS with photo.ReadGPS.
func New(r Resolver, kw store.KeywordStore, territories bool) *Locator {
	return &Locator{Resolver: r, Keywords: kw, GPS: photo.ReadGPS, Territories: territories}
}

// Process handles one item. Items whose keywords already carry a place tag
// are skipped before their position is read or any dataset is queried.
func (l *Locator) Process(ctx context.Context, item string) Result {
	log := zap.L().With(zap.String("component", "locate"), zap.String("item", filepath.Base(item)))
	res := Result{Item: item}

	existing, err := l.Keywords.Keywords(ctx, item)
	if err != nil {
		return l.fail(log, res, err)
	}
	if tags.Has(tags.Place, existing) {
		res.Status = StatusAlreadyTagged
		log.Info("already tagged")
		return res
	}

	p, err := l.GPS(item)
	if errors.Is(err, photo.ErrNoGPS) {
		res.Status = StatusNoGPS
		log.Info("no GPS position")
		return res
	}
	if err != nil {
		return l.fail(log, res, err)
	}

	place, found := l.Resolver.ResolvePlace(p)

	// The place tag marks an item as done, so it is written last. An item
	// whose territory write failed is retried in full on the next run.
	if l.Territories && !tags.Has(tags.Territory, existing) {
		res.Territories = l.Resolver.ResolveTerritories(p)
		if len(res.Territories) > 0 {
			tag := tags.Make(tags.Territory, resolve.JoinNames(res.Territories))
			if err := l.Keywords.AddKeyword(ctx, item, tag); err != nil {
				return l.fail(log, res, err)
			}
			res.Added = append(res.Added, tag)
		}
	}

	if found {
		res.Place = &place
		tag := tags.Make(tags.Place, place.Name)
		if err := l.Keywords.AddKeyword(ctx, item, tag); err != nil {
			return l.fail(log, res, err)
		}
		res.Added = append(res.Added, tag)
	}

	if !found {
		res.Status = StatusNotFound
		log.Info("no place found", zap.Float64("lat", p.Lat), zap.Float64("lon", p.Lon))
		return res
	}

	res.Status = StatusTagged
	log.Info("tagged",
		zap.String("place", place.Name),
		zap.String("source", place.Source),
		zap.Strings("territories", res.Territories),
	)
	return res
}

func (l *Locator) fail(log *zap.Logger, res Result, err error) Result {
	res.Status = StatusError
	res.Err = eris.Wrapf(err, "locate: %s", res.Item)
	log.Warn("item failed", zap.Error(err))
	return res
}
