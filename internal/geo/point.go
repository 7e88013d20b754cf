// Package geo answers "which named polygon of this dataset contains a GPS
// point" for shapefile-backed datasets in arbitrary projected coordinate
// systems.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// GeoPoint is a WGS84 position in decimal degrees. Fields are ordered
// latitude first, matching how GPS readers report positions.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// NewGeoPoint validates the ranges of a latitude/longitude pair.
func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return GeoPoint{}, eris.New("geo: coordinate is NaN")
	}
	if lat < -90 || lat > 90 {
		return GeoPoint{}, eris.Errorf("geo: latitude %f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return GeoPoint{}, eris.Errorf("geo: longitude %f out of range [-180, 180]", lon)
	}
	return GeoPoint{Lat: lat, Lon: lon}, nil
}

// LonLat returns the point in x/y order.
func (p GeoPoint) LonLat() (lon, lat float64) {
	return p.Lon, p.Lat
}

// ProjectedPoint is a position in a dataset's native planar units.
type ProjectedPoint struct {
	X float64
	Y float64
}
