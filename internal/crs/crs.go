// Package crs projects WGS84 longitude/latitude into the native coordinate
// reference system of a geometry dataset.
//
// Descriptors are WKT projection definitions as found in a shapefile's
// companion .prj file, proj4 strings, or EPSG-style identifiers such as
// "EPSG:26986". Parsing and projection math are github.com/ctessum/geom/proj.
package crs

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
)

// Projection converts WGS84 coordinates into a projected system.
//
// FromWGS84 takes longitude first. Callers holding (lat, lon) pairs must
// swap them before calling. A point the projection cannot represent comes
// back as NaN, which lies outside every bounding box.
type Projection interface {
	FromWGS84(lon, lat float64) (x, y float64)
	Name() string
}

// transform wraps a proj transformer from WGS84. A nil fwd is the identity.
type transform struct {
	name string

	// proj transformers recompute some constants per call and are not
	// safe for concurrent use.
	mu  sync.Mutex
	fwd proj.Transformer
}

func (t *transform) FromWGS84(lon, lat float64) (float64, float64) {
	if t.fwd == nil {
		return lon, lat
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	x, y, err := t.fwd(lon, lat)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	return x, y
}

func (t *transform) Name() string { return t.name }

// Geographic returns an identity projection labelled name.
func Geographic(name string) Projection {
	return &transform{name: name}
}

// Parse builds a Projection from a WKT definition, a proj4 string or an
// "EPSG:<code>" identifier.
func Parse(descriptor string) (Projection, error) {
	d := strings.TrimSpace(strings.TrimPrefix(descriptor, "\ufeff"))
	if d == "" {
		return nil, eris.New("crs: empty projection descriptor")
	}

	if code, ok := epsgCode(d); ok {
		return ForEPSG(code)
	}

	sr, err := parseSR(d)
	if err != nil {
		return nil, eris.Wrap(err, "crs: parse projection")
	}
	return fromSR(srName(sr), sr)
}

// parseSR calls proj.Parse, turning the panics it raises on some malformed
// WKT sections into errors.
func parseSR(d string) (sr *proj.SR, err error) {
	defer func() {
		if r := recover(); r != nil {
			sr, err = nil, eris.Errorf("malformed descriptor: %v", r)
		}
	}()
	return proj.Parse(d)
}

// fromSR builds the WGS84 to sr transform. Projection methods proj has no
// equations for are rejected here rather than at query time.
func fromSR(name string, sr *proj.SR) (Projection, error) {
	if _, _, err := sr.Transformers(); err != nil {
		return nil, eris.Wrapf(err, "crs: unsupported projection method %q", sr.Name)
	}
	wgs84, err := proj.Parse("EPSG:4326")
	if err != nil {
		return nil, eris.Wrap(err, "crs: wgs84 reference")
	}
	fwd, err := wgs84.NewTransform(sr)
	if err != nil {
		return nil, eris.Wrapf(err, "crs: transform to %s", name)
	}
	return &transform{name: name, fwd: fwd}, nil
}

// srName picks the most descriptive label proj kept for sr.
func srName(sr *proj.SR) string {
	for _, s := range []string{sr.SRSCode, sr.Title, sr.DatumName, sr.Name} {
		if s = strings.Trim(s, `" `); s != "" {
			return s
		}
	}
	return "unknown"
}

// epsgCode recognises "EPSG:26986", "epsg:26986", "ESRI:102039" and bare
// numeric codes.
func epsgCode(d string) (int, bool) {
	s := d
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if !strings.EqualFold(s[:i], "epsg") && !strings.EqualFold(s[:i], "esri") {
			return 0, false
		}
		s = s[i+1:]
	}
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}
