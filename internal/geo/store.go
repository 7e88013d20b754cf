package geo

import (
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/crs"
)

// Dataset describes one polygon dataset and how to name its features.
type Dataset struct {
	// Name labels the dataset in logs and results, e.g. "PAD-US MA".
	Name string
	// Path is the .shp file (the extension may be omitted).
	Path string
	// NameField is the attribute holding each feature's display name.
	NameField string
	// CRS overrides the companion .prj file when set (WKT or "EPSG:<code>").
	CRS string
	// Rules are the record predicates for this dataset.
	Rules RuleSet
}

// Match is one polygon containing a queried point.
type Match struct {
	Index   int
	Name    string
	Verdict Verdict
	Record  Record
}

// Store answers containment queries against one dataset.
type Store struct {
	name      string
	nameField string
	rules     RuleSet
	proj      crs.Projection
	features  FeatureSource
	bounds    *geom.Bounds
	log       *zap.Logger
}

// NewStore wraps a feature source. The overall bounding box is taken from
// the source once, at construction.
func NewStore(d Dataset, proj crs.Projection, features FeatureSource) *Store {
	return &Store{
		name:      d.Name,
		nameField: d.NameField,
		rules:     d.Rules,
		proj:      proj,
		features:  features,
		bounds:    features.Bounds(),
		log:       zap.L().With(zap.String("component", "geo.store"), zap.String("dataset", d.Name)),
	}
}

// Name returns the dataset name.
func (s *Store) Name() string { return s.name }

// Len returns the number of features in the dataset.
func (s *Store) Len() int { return s.features.Len() }

// Bounds returns the combined bounding box of all valid features.
func (s *Store) Bounds() *geom.Bounds { return s.bounds }

// Project converts a GPS point into the dataset's coordinate system.
func (s *Store) Project(p GeoPoint) ProjectedPoint {
	x, y := s.proj.FromWGS84(p.LonLat())
	return ProjectedPoint{X: x, Y: y}
}

// PointInBBox reports whether p falls inside the dataset's bounding box.
func (s *Store) PointInBBox(p GeoPoint) bool {
	return s.inBounds(s.Project(p))
}

func (s *Store) inBounds(pt ProjectedPoint) bool {
	return s.bounds.OverlapsPoint(geom.XY, geom.Coord{pt.X, pt.Y})
}

// PlaceFromPoint returns the display name of the first polygon containing
// p whose record is a strong match. Excluded records are skipped. The
// first fallback record is returned only when no strong match exists.
func (s *Store) PlaceFromPoint(p GeoPoint) (string, bool) {
	pt := s.Project(p)
	if !s.inBounds(pt) {
		return "", false
	}

	var fallback string
	hasFallback := false

	for i := 0; i < s.features.Len(); i++ {
		name, verdict, ok := s.checkFeature(i, pt)
		if !ok {
			continue
		}
		switch verdict {
		case VerdictStrong:
			return name, true
		case VerdictFallback:
			if !hasFallback {
				fallback, hasFallback = name, true
			}
		}
	}

	return fallback, hasFallback
}

// Matches returns every polygon containing p with its verdict, in dataset
// order. It is meant for diagnosing overlapping polygons.
func (s *Store) Matches(p GeoPoint) []Match {
	pt := s.Project(p)
	if !s.inBounds(pt) {
		return nil
	}

	var out []Match
	for i := 0; i < s.features.Len(); i++ {
		f := s.features.Feature(i)
		if f.Vertices < MinVertices || f.Err != nil || !f.Polygon.Contains(pt) {
			continue
		}
		name, _ := f.Record.GetField(s.nameField)
		out = append(out, Match{
			Index:   i,
			Name:    name,
			Verdict: s.classify(f.Record, name),
			Record:  f.Record,
		})
	}
	return out
}

// checkFeature tests feature i. ok is false when the feature is unusable or does
// not contain pt.
func (s *Store) checkFeature(i int, pt ProjectedPoint) (string, Verdict, bool) {
	f := s.features.Feature(i)
	if f.Vertices < MinVertices {
		return "", 0, false
	}
	if f.Err != nil {
		s.log.Debug("skipping invalid polygon", zap.Int("feature", i), zap.Error(f.Err))
		return "", 0, false
	}
	if !f.Polygon.Contains(pt) {
		return "", 0, false
	}
	name, _ := f.Record.GetField(s.nameField)
	return name, s.classify(f.Record, name), true
}

func (s *Store) classify(rec Record, name string) Verdict {
	// A nameless polygon cannot label anything.
	if name == "" {
		return VerdictExcluded
	}
	return s.rules.Classify(rec, s.nameField)
}
