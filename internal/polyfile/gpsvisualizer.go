package polyfile

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// ReadGPSVisualizer reads one polygon from a single-track text export of
// https://www.gpsvisualizer.com/draw/. Track point rows look like
// "T<tab>lat<tab>lon..."; all other rows are ignored.
func ReadGPSVisualizer(path string) (orb.Polygon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "polyfile: open %s", path)
	}
	defer func() { _ = f.Close() }()

	var points []orb.Point
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		parts := strings.Split(strings.TrimSpace(sc.Text()), "\t")
		if parts[0] != "T" || len(parts) < 3 {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "polyfile: %s line %d: latitude", path, line)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "polyfile: %s line %d: longitude", path, line)
		}
		points = append(points, orb.Point{lon, lat})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "polyfile: read %s", path)
	}

	if len(points) < geo.MinVertices {
		return nil, &geo.GeometryError{Feature: -1, Reason: "track has " + strconv.Itoa(len(points)) + " points"}
	}
	return orb.Polygon{newRing(points)}, nil
}

// LoadDir loads every *.txt track in dir as a NamedPolygon named after the
// file stem, in file name order. Files that cannot be read or hold fewer
// than three track points are logged and skipped.
func LoadDir(dir string) ([]NamedPolygon, error) {
	log := zap.L().With(zap.String("component", "polyfile"), zap.String("dir", dir))

	if _, err := os.Stat(dir); err != nil {
		return nil, eris.Wrapf(err, "polyfile: stat %s", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, eris.Wrapf(err, "polyfile: glob %s", dir)
	}
	sort.Strings(paths)

	out := make([]NamedPolygon, 0, len(paths))
	for _, p := range paths {
		poly, err := ReadGPSVisualizer(p)
		if err != nil {
			log.Warn("skipping custom polygon", zap.String("file", filepath.Base(p)), zap.Error(err))
			continue
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		out = append(out, NamedPolygon{Name: name, Polygon: poly})
	}

	log.Info("custom polygons loaded", zap.Int("count", len(out)))
	return out, nil
}
