// Package resolve applies source precedence to find the place and the
// territories containing a GPS point.
package resolve

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/polyfile"
)

// CustomSource is the source name reported for hand-drawn polygons.
const CustomSource = "custom"

// PlaceSource is one dataset consulted for place names. *geo.Store
// implements it.
type PlaceSource interface {
	Name() string
	PlaceFromPoint(p geo.GeoPoint) (string, bool)
}

// matcher is implemented by sources that can list every containing
// polygon.
type matcher interface {
	Matches(p geo.GeoPoint) []geo.Match
}

// Place is a resolved place name and the source that produced it.
type Place struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Resolution combines the place and territory results for one point.
type Resolution struct {
	Place       Place
	Found       bool
	Territories []string
}

// TerritoryList joins the territory names for display.
func (r Resolution) TerritoryList() string {
	return JoinNames(r.Territories)
}

// TerritoryCaption renders the territories as a photo caption line, or ""
// when there are none.
func (r Resolution) TerritoryCaption() string {
	if len(r.Territories) == 0 {
		return ""
	}
	return r.TerritoryList() + " traditional territory"
}

// Resolver holds the ordered sources. It is safe for concurrent use once
// built.
type Resolver struct {
	custom      []polyfile.NamedPolygon
	sources     []PlaceSource
	territories []polyfile.NamedPolygon
	log         *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCustom sets the hand-drawn polygons consulted before any dataset.
func WithCustom(polys []polyfile.NamedPolygon) Option {
	return func(r *Resolver) { r.custom = polys }
}

// WithSources appends datasets in precedence order.
func WithSources(sources ...PlaceSource) Option {
	return func(r *Resolver) { r.sources = append(r.sources, sources...) }
}

// WithStores appends shapefile stores in precedence order.
func WithStores(stores ...*geo.Store) Option {
	return func(r *Resolver) {
		for _, s := range stores {
			r.sources = append(r.sources, s)
		}
	}
}

// WithTerritories sets the territory polygons.
func WithTerritories(polys []polyfile.NamedPolygon) Option {
	return func(r *Resolver) { r.territories = polys }
}

// New builds a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{log: zap.L().With(zap.String("component", "resolve"))}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Sources returns the dataset source names in precedence order.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// ResolvePlace returns the first match of the custom polygons, then of
// each dataset in order.
func (r *Resolver) ResolvePlace(p geo.GeoPoint) (Place, bool) {
	if name, ok := polyfile.FirstMatch(r.custom, p); ok {
		r.log.Debug("place found", zap.String("source", CustomSource), zap.String("place", name))
		return Place{Name: name, Source: CustomSource}, true
	}
	for _, s := range r.sources {
		if name, ok := s.PlaceFromPoint(p); ok {
			r.log.Debug("place found", zap.String("source", s.Name()), zap.String("place", name))
			return Place{Name: name, Source: s.Name()}, true
		}
	}
	return Place{}, false
}

// ResolveTerritories returns every territory containing p, sorted and
// without duplicates.
func (r *Resolver) ResolveTerritories(p geo.GeoPoint) []string {
	names := polyfile.AllMatches(r.territories, p)
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	out := names[:1]
	for _, n := range names[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

// Resolve runs both resolutions independently.
func (r *Resolver) Resolve(p geo.GeoPoint) Resolution {
	place, found := r.ResolvePlace(p)
	return Resolution{
		Place:       place,
		Found:       found,
		Territories: r.ResolveTerritories(p),
	}
}

// HasTerritories reports whether a territory dataset is configured.
func (r *Resolver) HasTerritories() bool {
	return len(r.territories) > 0
}
