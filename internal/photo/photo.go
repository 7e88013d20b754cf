// Package photo reads GPS positions embedded in image EXIF metadata.
package photo

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// ErrNoGPS is returned for images without a usable GPS position.
var ErrNoGPS = errors.New("photo: no GPS position")

// extensions read by List.
var extensions = map[string]bool{".jpg": true, ".jpeg": true}

// ReadGPS returns the position recorded in an image's EXIF GPS tags,
// sign-adjusted by hemisphere reference.
func ReadGPS(path string) (geo.GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return geo.GeoPoint{}, eris.Wrapf(err, "photo: open %s", path)
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil || x == nil {
		return geo.GeoPoint{}, eris.Wrapf(ErrNoGPS, "photo: %s has no EXIF data", filepath.Base(path))
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return geo.GeoPoint{}, eris.Wrapf(ErrNoGPS, "photo: %s", filepath.Base(path))
	}

	p, err := geo.NewGeoPoint(lat, lon)
	if err != nil {
		return geo.GeoPoint{}, eris.Wrapf(ErrNoGPS, "photo: %s: %v", filepath.Base(path), err)
	}
	return p, nil
}

// List returns the JPEG files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "photo: read dir %s", dir)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
