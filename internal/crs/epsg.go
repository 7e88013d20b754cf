package crs

import (
	"fmt"

	"github.com/rotisserie/eris"
)

const webMercator = "+title=WGS 84 / Pseudo-Mercator +proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"

const conusAlbers = "+title=NAD83 / Conus Albers +proj=aea +lat_1=29.5 +lat_2=45.5 +lat_0=23 +lon_0=-96 +x_0=0 +y_0=0 +ellps=GRS80 +datum=NAD83 +units=m +no_defs"

// epsgDefs maps the EPSG (and ESRI) codes the bundled datasets use to proj4
// definitions.
var epsgDefs = map[int]string{
	4326: "+title=WGS 84 +proj=longlat +datum=WGS84 +no_defs",
	4269: "+title=NAD83 +proj=longlat +ellps=GRS80 +datum=NAD83 +no_defs",
	4267: "+title=NAD27 +proj=longlat +ellps=clrk66 +towgs84=-8,160,176 +no_defs",
	4258: "+title=ETRS89 +proj=longlat +ellps=GRS80 +towgs84=0,0,0 +no_defs",

	3857:   webMercator,
	900913: webMercator,
	102100: webMercator,

	26986: "+title=NAD83 / Massachusetts Mainland +proj=lcc +lat_1=42.68333333333333 +lat_2=41.71666666666667 +lat_0=41 +lon_0=-71.5 +x_0=200000 +y_0=750000 +ellps=GRS80 +datum=NAD83 +units=m +no_defs",
	26987: "+title=NAD83 / Massachusetts Island +proj=lcc +lat_1=41.48333333333333 +lat_2=41.28333333333333 +lat_0=41 +lon_0=-70.5 +x_0=500000 +y_0=0 +ellps=GRS80 +datum=NAD83 +units=m +no_defs",

	5070:   conusAlbers,
	102039: conusAlbers,
}

// ForEPSG returns a Projection for a known EPSG (or ESRI) code, including
// the WGS84 and NAD83 UTM zone ranges.
func ForEPSG(code int) (Projection, error) {
	def, ok := epsgDefs[code]
	if !ok {
		def, ok = utmDef(code)
	}
	if !ok {
		return nil, eris.Errorf("crs: unsupported EPSG code %d", code)
	}

	sr, err := parseSR(def)
	if err != nil {
		return nil, eris.Wrapf(err, "crs: EPSG:%d", code)
	}
	return fromSR(srName(sr), sr)
}

func utmDef(code int) (string, bool) {
	switch {
	case code >= 32601 && code <= 32660:
		z := code - 32600
		return fmt.Sprintf("+title=WGS 84 / UTM zone %dN +proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", z, z), true
	case code >= 32701 && code <= 32760:
		z := code - 32700
		return fmt.Sprintf("+title=WGS 84 / UTM zone %dS +proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", z, z), true
	case code >= 26901 && code <= 26923:
		z := code - 26900
		return fmt.Sprintf("+title=NAD83 / UTM zone %dN +proj=utm +zone=%d +ellps=GRS80 +datum=NAD83 +units=m +no_defs", z, z), true
	}
	return "", false
}
