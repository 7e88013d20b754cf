package resolve

import "strings"

// JoinNames renders names as "a", "a & b" or "a, b & c". An empty list
// renders as "".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
	}
}
