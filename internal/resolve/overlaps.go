package resolve

import "github.com/sells-group/placetag-cli/internal/geo"

// SourceMatch is one containing polygon from one source.
type SourceMatch struct {
	Source  string      `json:"source"`
	Name    string      `json:"name"`
	Verdict geo.Verdict `json:"verdict"`
	Index   int         `json:"index"`
}

// Overlaps lists every polygon of every place source containing p, custom
// polygons first, regardless of precedence. Excluded and fallback records
// are included with their verdict.
func (r *Resolver) Overlaps(p geo.GeoPoint) []SourceMatch {
	var out []SourceMatch
	for i, n := range r.custom {
		if n.Contains(p) {
			out = append(out, SourceMatch{Source: CustomSource, Name: n.Name, Verdict: geo.VerdictStrong, Index: i})
		}
	}
	for _, s := range r.sources {
		m, ok := s.(matcher)
		if !ok {
			continue
		}
		for _, match := range m.Matches(p) {
			out = append(out, SourceMatch{Source: s.Name(), Name: match.Name, Verdict: match.Verdict, Index: match.Index})
		}
	}
	return out
}
