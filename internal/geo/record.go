package geo

import "strings"

// Record is a feature's attribute row keyed by field name.
type Record map[string]string

// GetField returns the value of a field, matching the name exactly first
// and then case-insensitively. Missing fields report false.
func (r Record) GetField(name string) (string, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// cleanAttribute strips DBF padding from a raw attribute value.
func cleanAttribute(v string) string {
	return strings.TrimSpace(strings.TrimRight(v, "\x00"))
}
