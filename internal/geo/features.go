package geo

import "github.com/twpayne/go-geom"

// Feature is one polygon of a dataset with its attribute record. Polygon
// is nil and Err holds a *GeometryError when the vertices were unusable.
type Feature struct {
	Vertices int
	Polygon  *Polygon
	Err      error
	Record   Record
}

// NewFeature builds a Feature from flat x,y rings, capturing polygon
// construction failures in the feature instead of returning them.
func NewFeature(index int, rec Record, rings ...[]float64) Feature {
	f := Feature{Record: rec}
	for _, r := range rings {
		f.Vertices += len(r) / 2
	}
	if f.Vertices < MinVertices {
		return f
	}
	poly, err := NewPolygon(rings...)
	if err != nil {
		if ge, ok := err.(*GeometryError); ok {
			ge.Feature = index
		}
		f.Err = err
		return f
	}
	f.Polygon = poly
	return f
}

// FeatureSource supplies a dataset's features in load order. Order is
// significant: earlier features win ties between overlapping polygons.
type FeatureSource interface {
	Bounds() *geom.Bounds
	Len() int
	Feature(i int) Feature
}

// Features is an in-memory FeatureSource.
type Features struct {
	items  []Feature
	bounds *geom.Bounds
}

// NewFeatures indexes items and computes the union of their bounds.
// Features without a valid polygon do not contribute to the bounds.
func NewFeatures(items []Feature) *Features {
	b := geom.NewBounds(geom.XY)
	for _, f := range items {
		if f.Polygon != nil {
			b.Extend(f.Polygon.Bounds().Polygon())
		}
	}
	return &Features{items: items, bounds: b}
}

// Bounds returns the union of the valid features' bounding boxes.
func (f *Features) Bounds() *geom.Bounds { return f.bounds }

// Len returns the number of features, valid or not.
func (f *Features) Len() int { return len(f.items) }

// Feature returns the i'th feature in load order.
func (f *Features) Feature(i int) Feature { return f.items[i] }
