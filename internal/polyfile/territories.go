package polyfile

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// LoadTerritories reads a feature collection of named territories, as
// published by native-land.ca. Each boundary ring of a Polygon or
// MultiPolygon geometry becomes its own NamedPolygon sharing the feature's
// properties.Name. Features without a name and rings with fewer than three
// points are skipped. Extra coordinate dimensions are dropped.
func LoadTerritories(path string) ([]NamedPolygon, error) {
	log := zap.L().With(zap.String("component", "polyfile"), zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "polyfile: read territories %s", path)
	}
	if !gjson.ValidBytes(data) {
		return nil, eris.Errorf("polyfile: territories %s is not valid JSON", path)
	}
	features := gjson.GetBytes(data, "features")
	if !features.IsArray() {
		return nil, eris.Errorf("polyfile: territories %s has no features array", path)
	}

	var out []NamedPolygon
	skipped := 0
	features.ForEach(func(_, f gjson.Result) bool {
		name := f.Get("properties.Name")
		if !name.Exists() {
			return true
		}
		for _, ring := range boundaryRings(f.Get("geometry")) {
			pts := flatten2D(ring)
			if len(pts) < geo.MinVertices {
				skipped++
				continue
			}
			out = append(out, NamedPolygon{Name: name.String(), Polygon: orb.Polygon{newRing(pts)}})
		}
		return true
	})

	log.Info("territories loaded", zap.Int("rings", len(out)), zap.Int("skipped", skipped))
	return out, nil
}

// boundaryRings returns the rings of a geometry. Polygon coordinates are
// a list of rings; MultiPolygon coordinates are a list of those.
func boundaryRings(g gjson.Result) []gjson.Result {
	coords := g.Get("coordinates")
	switch g.Get("type").String() {
	case "MultiPolygon":
		var rings []gjson.Result
		for _, poly := range coords.Array() {
			rings = append(rings, poly.Array()...)
		}
		return rings
	default:
		return coords.Array()
	}
}

// flatten2D keeps the first two ordinates of each position.
func flatten2D(ring gjson.Result) []orb.Point {
	positions := ring.Array()
	pts := make([]orb.Point, 0, len(positions))
	for _, pos := range positions {
		xy := pos.Array()
		if len(xy) < 2 {
			continue
		}
		pts = append(pts, orb.Point{xy[0].Float(), xy[1].Float()})
	}
	return pts
}
