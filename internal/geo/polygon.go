package geo

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// MinVertices is the smallest vertex count a polygon ring can have.
const MinVertices = 3

// Polygon is one dataset feature's rings in a single coordinate system.
// Containment is even-odd across all rings, so multi-part features and
// holes need no orientation analysis.
type Polygon struct {
	rings    []*geom.LinearRing
	bounds   *geom.Bounds
	vertices int
}

// NewPolygon builds a Polygon from flat x,y coordinate rings. Open rings
// are closed and rings with fewer than MinVertices vertices are dropped.
// It returns a *GeometryError instead of a polygon when the remaining
// rings cannot describe an area.
func NewPolygon(rings ...[]float64) (*Polygon, error) {
	if len(rings) == 0 {
		return nil, &GeometryError{Feature: -1, Reason: "no rings"}
	}

	p := &Polygon{bounds: geom.NewBounds(geom.XY)}
	var area float64

	for i, flat := range rings {
		if len(flat)%2 != 0 {
			return nil, &GeometryError{Feature: -1, Reason: fmt.Sprintf("ring %d has odd coordinate count %d", i, len(flat))}
		}
		n := len(flat) / 2
		if n < MinVertices {
			continue
		}
		for _, v := range flat {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &GeometryError{Feature: -1, Reason: fmt.Sprintf("ring %d has non-finite coordinate", i)}
			}
		}

		coords := flat
		if flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1] {
			coords = make([]float64, 0, len(flat)+2)
			coords = append(coords, flat...)
			coords = append(coords, flat[0], flat[1])
		}

		ring := geom.NewLinearRingFlat(geom.XY, coords)
		area += math.Abs(ring.Area())
		p.rings = append(p.rings, ring)
		p.bounds.Extend(ring)
		p.vertices += n
	}

	if len(p.rings) == 0 {
		return nil, &GeometryError{Feature: -1, Reason: fmt.Sprintf("no ring has %d vertices", MinVertices)}
	}
	if area == 0 {
		return nil, &GeometryError{Feature: -1, Reason: "rings enclose no area"}
	}
	return p, nil
}

// Contains reports whether pt lies inside the polygon. Points on any ring
// boundary, hole edges included, count as inside.
func (p *Polygon) Contains(pt ProjectedPoint) bool {
	c := geom.Coord{pt.X, pt.Y}
	if !p.bounds.OverlapsPoint(geom.XY, c) {
		return false
	}
	inside := 0
	for _, r := range p.rings {
		switch xy.LocatePointInRing(geom.XY, c, r.FlatCoords()) {
		case location.Boundary:
			return true
		case location.Interior:
			inside++
		}
	}
	return inside%2 == 1
}

// Bounds returns the polygon's bounding box.
func (p *Polygon) Bounds() *geom.Bounds { return p.bounds }

// NumRings returns the number of rings.
func (p *Polygon) NumRings() int { return len(p.rings) }

// NumVertices returns the vertex count of the kept rings, before ring
// closing.
func (p *Polygon) NumVertices() int { return p.vertices }
