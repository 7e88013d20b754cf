package crs

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Massachusetts Mainland as shipped with the MassGIS open space layer.
const massMainlandWKT = `PROJCS["NAD_1983_StatePlane_Massachusetts_Mainland_FIPS_2001",GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Lambert_Conformal_Conic"],PARAMETER["False_Easting",200000.0],PARAMETER["False_Northing",750000.0],PARAMETER["Central_Meridian",-71.5],PARAMETER["Standard_Parallel_1",41.71666666666667],PARAMETER["Standard_Parallel_2",42.68333333333333],PARAMETER["Latitude_Of_Origin",41.0],UNIT["Meter",1.0]]`

const worldMercatorWKT = `PROJCS["WGS_1984_World_Mercator",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_1SP"],PARAMETER["False_Easting",0.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",0.0],PARAMETER["Scale_Factor",1.0],UNIT["Meter",1.0]]`

const wgs84GeographicWKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// Fresh Pond, Cambridge MA.
const freshPondLon, freshPondLat = -71.136443, 42.389022

func TestParse_MassMainland(t *testing.T) {
	p, err := Parse(massMainlandWKT)
	require.NoError(t, err)
	assert.Equal(t, "NAD_1983_StatePlane_Massachusetts_Mainland_FIPS_2001", p.Name())

	// The projection origin maps onto the false origin.
	x, y := p.FromWGS84(-71.5, 41.0)
	assert.InDelta(t, 200000.0, x, 1e-3)
	assert.InDelta(t, 750000.0, y, 1e-3)

	x, y = p.FromWGS84(freshPondLon, freshPondLat)
	assert.InDelta(t, 229935.8259, x, 0.01)
	assert.InDelta(t, 904343.0526, y, 0.01)
}

func TestParse_AxisOrderMatters(t *testing.T) {
	p, err := Parse(massMainlandWKT)
	require.NoError(t, err)

	sx, sy := p.FromWGS84(freshPondLat, freshPondLon)
	if !math.IsNaN(sx) {
		assert.Greater(t, math.Abs(sx-229935.8)+math.Abs(sy-904343.1), 1e6)
	}
}

func TestParse_WKTMatchesEPSGRegistry(t *testing.T) {
	fromWKT, err := Parse(massMainlandWKT)
	require.NoError(t, err)
	fromCode, err := Parse("EPSG:26986")
	require.NoError(t, err)
	assert.Equal(t, "NAD83 / Massachusetts Mainland", fromCode.Name())

	wx, wy := fromWKT.FromWGS84(freshPondLon, freshPondLat)
	cx, cy := fromCode.FromWGS84(freshPondLon, freshPondLat)
	assert.InDelta(t, wx, cx, 0.01)
	assert.InDelta(t, wy, cy, 0.01)
}

func TestParse_Mercator1SP(t *testing.T) {
	p, err := Parse(worldMercatorWKT)
	require.NoError(t, err)

	x, y := p.FromWGS84(0, 0)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, _ = p.FromWGS84(1, 0)
	assert.InDelta(t, 111319.49, x, 0.01)
}

func TestParse_Geographic(t *testing.T) {
	p, err := Parse(wgs84GeographicWKT)
	require.NoError(t, err)

	x, y := p.FromWGS84(-71.1, 42.3)
	assert.InDelta(t, -71.1, x, 1e-9)
	assert.InDelta(t, 42.3, y, 1e-9)
}

func TestParse_Proj4String(t *testing.T) {
	p, err := Parse("+proj=utm +zone=19 +datum=WGS84 +units=m +no_defs")
	require.NoError(t, err)

	x, y := p.FromWGS84(-69, 0)
	assert.InDelta(t, 500000, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestParse_EPSGIdentifiers(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		lon, lat   float64
		wantX      float64
		wantY      float64
		delta      float64
	}{
		{name: "wgs84 identity", descriptor: "EPSG:4326", lon: 10, lat: 20, wantX: 10, wantY: 20, delta: 1e-9},
		{name: "lowercase prefix", descriptor: "epsg:4269", lon: -70, lat: 40, wantX: -70, wantY: 40, delta: 1e-6},
		{name: "bare code", descriptor: "4326", lon: -70, lat: 40, wantX: -70, wantY: 40, delta: 1e-9},
		{name: "web mercator origin", descriptor: "EPSG:3857", lon: 0, lat: 0, wantX: 0, wantY: 0, delta: 1e-6},
		{name: "web mercator quarter turn", descriptor: "EPSG:900913", lon: 90, lat: 0, wantX: 10018754.17, wantY: 0, delta: 0.01},
		{name: "utm central meridian", descriptor: "EPSG:32619", lon: -69, lat: 0, wantX: 500000, wantY: 0, delta: 1e-6},
		{name: "utm southern hemisphere", descriptor: "EPSG:32719", lon: -69, lat: 0, wantX: 500000, wantY: 10000000, delta: 1e-6},
		{name: "conus albers origin", descriptor: "EPSG:5070", lon: -96, lat: 23, wantX: 0, wantY: 0, delta: 1e-3},
		{name: "esri albers alias", descriptor: "ESRI:102039", lon: -96, lat: 23, wantX: 0, wantY: 0, delta: 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.descriptor)
			require.NoError(t, err)
			x, y := p.FromWGS84(tt.lon, tt.lat)
			assert.InDelta(t, tt.wantX, x, tt.delta)
			assert.InDelta(t, tt.wantY, y, tt.delta)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
	}{
		{name: "empty", descriptor: "   "},
		{name: "unknown epsg", descriptor: "EPSG:999999"},
		{name: "garbage", descriptor: "not a projection"},
		{name: "unterminated", descriptor: `PROJCS["broken",GEOGCS["x"`},
		{name: "unsupported method", descriptor: `PROJCS["Polar",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]]],PROJECTION["Polar_Stereographic"],UNIT["metre",1]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.descriptor)
			assert.Error(t, err)
		})
	}
}

func TestGeographic(t *testing.T) {
	p := Geographic("WGS84")
	assert.Equal(t, "WGS84", p.Name())

	x, y := p.FromWGS84(-71.1, 42.3)
	assert.Equal(t, -71.1, x)
	assert.Equal(t, 42.3, y)
}

func TestFromWGS84_Concurrent(t *testing.T) {
	p, err := Parse("EPSG:32619")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			x, _ := p.FromWGS84(-69, 0)
			assert.InDelta(t, 500000, x, 1e-6)
		}()
	}
	wg.Wait()
}
