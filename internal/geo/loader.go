package geo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/crs"
)

// OpenShapefile loads every polygon and attribute record of a shapefile
// dataset and projects queries through its companion .prj descriptor (or
// d.CRS when set). Any failure is returned as a *ConfigurationError.
func OpenShapefile(d Dataset) (*Store, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("dataset", d.Name))

	shpPath := d.Path
	if filepath.Ext(shpPath) == "" {
		shpPath += ".shp"
	}

	if d.NameField == "" {
		return nil, configErr(d, eris.New("geo: name field is required"))
	}
	if err := d.Rules.Validate(); err != nil {
		return nil, configErr(d, err)
	}

	proj, err := loadProjection(d, shpPath)
	if err != nil {
		return nil, configErr(d, err)
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, configErr(d, eris.Wrapf(err, "geo: open shapefile %s", shpPath))
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}
	if fieldIndex(names, d.NameField) < 0 {
		return nil, configErr(d, eris.Errorf("geo: name field %s not found in %s", d.NameField, shpPath))
	}

	decode := attributeDecoder(shpPath)

	var items []Feature
	var invalid int
	for reader.Next() {
		idx, shape := reader.Shape()

		rec := make(Record, len(names))
		for i, n := range names {
			rec[n] = decode(cleanAttribute(reader.Attribute(i)))
		}

		f := featureFromShape(idx, shape, rec)
		if f.Err != nil {
			invalid++
		}
		items = append(items, f)
	}
	if err := reader.Err(); err != nil {
		return nil, configErr(d, eris.Wrapf(err, "geo: read shapefile %s", shpPath))
	}
	// A .shp cut short on a record boundary ends without a read error.
	if n := reader.AttributeCount(); len(items) != n {
		return nil, configErr(d, eris.Errorf("geo: %s has %d shapes but %d attribute records", shpPath, len(items), n))
	}

	if invalid > 0 {
		log.Debug("geo: shapefile has invalid polygons", zap.Int("invalid", invalid))
	}

	log.Info("dataset loaded",
		zap.String("path", shpPath),
		zap.String("crs", proj.Name()),
		zap.Int("features", len(items)),
	)

	return NewStore(d, proj, NewFeatures(items)), nil
}

func configErr(d Dataset, err error) error {
	return &ConfigurationError{Dataset: d.Name, Err: err}
}

// loadProjection resolves the dataset CRS: the explicit override wins,
// otherwise the .prj file next to the .shp is required.
func loadProjection(d Dataset, shpPath string) (crs.Projection, error) {
	if d.CRS != "" {
		p, err := crs.Parse(d.CRS)
		return p, eris.Wrapf(err, "geo: crs override %q", d.CRS)
	}

	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read projection %s", prjPath)
	}
	p, err := crs.Parse(string(data))
	if err != nil {
		return nil, eris.Wrapf(err, "geo: parse projection %s", prjPath)
	}
	return p, nil
}

// fieldIndex returns the index of a named field, or -1 if not found.
func fieldIndex(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}

// featureFromShape converts a shapefile geometry into a Feature, one ring
// per shapefile part.
func featureFromShape(idx int, s shp.Shape, rec Record) Feature {
	var parts []int32
	var points []shp.Point

	switch shape := s.(type) {
	case *shp.Polygon:
		parts, points = shape.Parts, shape.Points
	case *shp.PolygonZ:
		parts, points = shape.Parts, shape.Points
	case *shp.PolygonM:
		parts, points = shape.Parts, shape.Points
	case nil, *shp.Null:
		return Feature{Record: rec}
	default:
		return Feature{
			Record: rec,
			Err:    &GeometryError{Feature: idx, Reason: "not a polygon shape"},
		}
	}

	return NewFeature(idx, rec, partRings(parts, points)...)
}

// partRings splits a shapefile point list into flat x,y rings.
func partRings(parts []int32, points []shp.Point) [][]float64 {
	if len(parts) == 0 && len(points) > 0 {
		parts = []int32{0}
	}
	rings := make([][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(points) {
			continue
		}
		flat := make([]float64, 0, 2*(end-start))
		for _, pt := range points[start:end] {
			flat = append(flat, pt.X, pt.Y)
		}
		rings = append(rings, flat)
	}
	return rings
}
