// Package polyfile loads hand-authored polygons that are already in WGS84
// longitude/latitude: GPSVisualizer track drawings and territory feature
// collections.
package polyfile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// NamedPolygon is a polygon carrying only a display name. Coordinates are
// lon/lat.
type NamedPolygon struct {
	Name    string
	Polygon orb.Polygon
}

// Contains reports whether the point lies inside the polygon.
func (n NamedPolygon) Contains(p geo.GeoPoint) bool {
	if len(n.Polygon) == 0 {
		return false
	}
	pt := orb.Point{p.Lon, p.Lat}
	if !n.Polygon.Bound().Contains(pt) {
		return false
	}
	return planar.PolygonContains(n.Polygon, pt)
}

// FirstMatch returns the name of the first polygon containing p.
func FirstMatch(polys []NamedPolygon, p geo.GeoPoint) (string, bool) {
	for _, n := range polys {
		if n.Contains(p) {
			return n.Name, true
		}
	}
	return "", false
}

// AllMatches returns the names of every polygon containing p, in order.
// A name appears once per containing ring.
func AllMatches(polys []NamedPolygon, p geo.GeoPoint) []string {
	var out []string
	for _, n := range polys {
		if n.Contains(p) {
			out = append(out, n.Name)
		}
	}
	return out
}

// newRing closes a lon/lat point list into an orb ring.
func newRing(points []orb.Point) orb.Ring {
	r := orb.Ring(points)
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}
