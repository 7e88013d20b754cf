package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wgs84PRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

type testFeature struct {
	name  string
	class string
	shape shp.Shape
}

func writeShapefile(t *testing.T, dir, base string, features []testFeature) string {
	t.Helper()
	path := filepath.Join(dir, base+".shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("Unit_Nm", 64),
		shp.StringField("FeatClass", 32),
	}))

	for _, f := range features {
		row := int(w.Write(f.shape))
		require.NoError(t, w.WriteAttribute(row, 0, f.name))
		require.NoError(t, w.WriteAttribute(row, 1, f.class))
	}
	w.Close()
	// go-shp v0.1.1's Create writes the attribute table as "<base>dbf".
	require.NoError(t, os.Rename(filepath.Join(dir, base+"dbf"), filepath.Join(dir, base+".dbf")))
	return path
}

// shpPolygon assembles a polygon record from parts, one ring per part.
func shpPolygon(parts ...[]shp.Point) *shp.Polygon {
	p := &shp.Polygon{NumParts: int32(len(parts))}
	for _, part := range parts {
		p.Parts = append(p.Parts, int32(len(p.Points)))
		p.Points = append(p.Points, part...)
	}
	p.NumPoints = int32(len(p.Points))
	p.Box = shp.BBoxFromPoints(p.Points)
	return p
}

func shpSquare(x0, y0, x1, y1 float64) *shp.Polygon {
	return shpPolygon([]shp.Point{
		{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0},
	})
}

func TestOpenShapefile(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "parks", []testFeature{
		{name: "Park", shape: shpSquare(-72, 42, -71, 43)},
		{name: "Fresh Pond Reservation", shape: shpSquare(-71.2, 42.3, -71.1, 42.4)},
		{name: "Mount Auburn", class: "Proclamation", shape: shpSquare(-71.2, 42.3, -71.1, 42.4)},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parks.prj"), []byte(wgs84PRJ), 0o644))

	s, err := OpenShapefile(Dataset{Name: "parks", Path: path, NameField: "Unit_Nm", Rules: PADUSRules()})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "parks", s.Name())

	name, ok := s.PlaceFromPoint(pt(t, 42.389022, -71.136443))
	require.True(t, ok)
	assert.Equal(t, "Fresh Pond Reservation", name)

	_, ok = s.PlaceFromPoint(pt(t, 0, 0))
	assert.False(t, ok)
}

func TestOpenShapefile_PathWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "open", []testFeature{{name: "Square", shape: shpSquare(0, 0, 1, 1)}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "open.prj"), []byte(wgs84PRJ), 0o644))

	s, err := OpenShapefile(Dataset{Name: "open", Path: path[:len(path)-4], NameField: "Unit_Nm"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestOpenShapefile_CRSOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "noprj", []testFeature{{name: "Square", shape: shpSquare(0, 0, 1, 1)}})

	s, err := OpenShapefile(Dataset{Name: "noprj", Path: path, NameField: "Unit_Nm", CRS: "EPSG:4326"})
	require.NoError(t, err)

	name, ok := s.PlaceFromPoint(pt(t, 0.5, 0.5))
	require.True(t, ok)
	assert.Equal(t, "Square", name)
}

func TestOpenShapefile_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "cfg", []testFeature{{name: "Square", shape: shpSquare(0, 0, 1, 1)}})

	t.Run("missing prj", func(t *testing.T) {
		_, err := OpenShapefile(Dataset{Name: "cfg", Path: path, NameField: "Unit_Nm"})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg.prj"), []byte(wgs84PRJ), 0o644))

	t.Run("missing shapefile", func(t *testing.T) {
		_, err := OpenShapefile(Dataset{Name: "gone", Path: filepath.Join(dir, "gone.shp"), NameField: "Unit_Nm", CRS: "EPSG:4326"})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
	})

	t.Run("unknown name field", func(t *testing.T) {
		_, err := OpenShapefile(Dataset{Name: "cfg", Path: path, NameField: "SITE_NAME"})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
		assert.Contains(t, err.Error(), "SITE_NAME")
	})

	t.Run("empty name field", func(t *testing.T) {
		_, err := OpenShapefile(Dataset{Name: "cfg", Path: path})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
	})

	t.Run("malformed prj", func(t *testing.T) {
		bad := writeShapefile(t, dir, "bad", []testFeature{{name: "Square", shape: shpSquare(0, 0, 1, 1)}})
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.prj"), []byte(`PROJCS["x",GEOGCS[`), 0o644))
		_, err := OpenShapefile(Dataset{Name: "bad", Path: bad, NameField: "Unit_Nm"})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
	})

	t.Run("invalid rule", func(t *testing.T) {
		_, err := OpenShapefile(Dataset{Name: "cfg", Path: path, NameField: "Unit_Nm", Rules: RuleSet{{Field: "x"}}})
		require.Error(t, err)
		assert.True(t, IsConfiguration(err))
	})
}

func TestOpenShapefile_DegenerateFeatureSkipped(t *testing.T) {
	dir := t.TempDir()
	line := shpPolygon([]shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	path := writeShapefile(t, dir, "degen", []testFeature{
		{name: "Line", shape: line},
		{name: "Square", shape: shpSquare(0, 0, 2, 2)},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "degen.prj"), []byte(wgs84PRJ), 0o644))

	s, err := OpenShapefile(Dataset{Name: "degen", Path: path, NameField: "Unit_Nm"})
	require.NoError(t, err)

	name, ok := s.PlaceFromPoint(pt(t, 1, 1))
	require.True(t, ok)
	assert.Equal(t, "Square", name)
}

func TestOpenShapefile_MultiPartWithDegeneratePart(t *testing.T) {
	dir := t.TempDir()
	parts := shpPolygon(
		[]shp.Point{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0}},
		[]shp.Point{{X: 8, Y: 8}, {X: 9, Y: 9}},
	)
	path := writeShapefile(t, dir, "parts", []testFeature{{name: "Island Park", shape: parts}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parts.prj"), []byte(wgs84PRJ), 0o644))

	s, err := OpenShapefile(Dataset{Name: "parts", Path: path, NameField: "Unit_Nm"})
	require.NoError(t, err)

	name, ok := s.PlaceFromPoint(pt(t, 2, 2))
	require.True(t, ok)
	assert.Equal(t, "Island Park", name)
}

func TestOpenShapefile_TruncatedShp(t *testing.T) {
	dir := t.TempDir()
	path := writeShapefile(t, dir, "cut", []testFeature{
		{name: "First", shape: shpSquare(0, 0, 1, 1)},
		{name: "Second", shape: shpSquare(2, 2, 3, 3)},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cut.prj"), []byte(wgs84PRJ), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-10], 0o644))

	_, err = OpenShapefile(Dataset{Name: "cut", Path: path, NameField: "Unit_Nm"})
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestPartRings(t *testing.T) {
	points := []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}}

	rings := partRings([]int32{0, 3}, points)
	require.Len(t, rings, 2)
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1}, rings[0])
	assert.Equal(t, []float64{5, 5, 6, 5, 6, 6}, rings[1])

	assert.Len(t, partRings(nil, points), 1)
	assert.Empty(t, partRings([]int32{0, 9}, points[:2]))
}

func TestFeatureFromShape_NonPolygon(t *testing.T) {
	f := featureFromShape(4, &shp.Point{X: 1, Y: 2}, Record{})
	require.Error(t, f.Err)
	assert.True(t, IsGeometry(f.Err))

	f = featureFromShape(5, &shp.Null{}, Record{})
	assert.NoError(t, f.Err)
	assert.Equal(t, 0, f.Vertices)
}
