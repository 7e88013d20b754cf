package geo

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a dataset that cannot be used at all: a
// missing or unreadable geometry file, a missing or malformed projection
// descriptor, or a name field the attribute table does not have.
type ConfigurationError struct {
	Dataset string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("dataset %q: %v", e.Dataset, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// GeometryError reports one feature whose vertices do not form a usable
// polygon. Feature is -1 when the index is not known.
type GeometryError struct {
	Feature int
	Reason  string
}

func (e *GeometryError) Error() string {
	if e.Feature < 0 {
		return "invalid polygon: " + e.Reason
	}
	return fmt.Sprintf("feature %d: invalid polygon: %s", e.Feature, e.Reason)
}

// IsConfiguration reports whether err (or any error in its chain) is a
// ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsGeometry reports whether err (or any error in its chain) is a
// GeometryError.
func IsGeometry(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}
