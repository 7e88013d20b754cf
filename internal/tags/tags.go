// Package tags encodes resolved names as machine tags of the form
// "namespace=value" for image keyword lists.
package tags

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Kind selects the tag namespace.
type Kind int

// Tag kinds.
const (
	Place Kind = iota
	Territory
)

// Namespaces per kind.
const (
	PlaceNamespace     = "geo:place"
	TerritoryNamespace = "geo:native_territory"
)

// Namespace returns the namespace of k.
func (k Kind) Namespace() string {
	if k == Territory {
		return TerritoryNamespace
	}
	return PlaceNamespace
}

func (k Kind) String() string {
	if k == Territory {
		return "territory"
	}
	return "place"
}

// Make returns the quoted machine tag for value, e.g.
// `"geo:place=Fresh Pond Reservation"`.
func Make(k Kind, value string) string {
	return `"` + k.Namespace() + "=" + value + `"`
}

// Match reports whether candidate, optionally quote-wrapped, is a tag of
// kind k.
func Match(k Kind, candidate string) bool {
	return strings.HasPrefix(strings.TrimPrefix(candidate, `"`), k.Namespace()+"=")
}

// Parse returns the value of a tag of kind k. Everything after the first
// "=" is the value.
func Parse(k Kind, tag string) (string, error) {
	if !Match(k, tag) {
		return "", eris.Errorf("tags: %q is not a %s tag", tag, k)
	}
	s := strings.TrimPrefix(tag, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimPrefix(s, k.Namespace()+"="), nil
}

// Find returns the value of the first keyword that is a tag of kind k.
func Find(k Kind, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if v, err := Parse(k, kw); err == nil {
			return v, true
		}
	}
	return "", false
}

// Has reports whether any keyword is a tag of kind k.
func Has(k Kind, keywords []string) bool {
	for _, kw := range keywords {
		if Match(k, kw) {
			return true
		}
	}
	return false
}
