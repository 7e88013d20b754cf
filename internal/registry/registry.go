// Package registry reads the ordered list of shapefile datasets a resolver
// consults and opens them.
package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placetag-cli/internal/geo"
)

// Rule presets.
const (
	PresetNone  = "none"
	PresetPADUS = "padus"
)

// Descriptor is one dataset entry of the registry file.
type Descriptor struct {
	Name      string      `yaml:"name"`
	Path      string      `yaml:"path"`
	NameField string      `yaml:"name_field"`
	CRS       string      `yaml:"crs,omitempty"`
	Preset    string      `yaml:"preset,omitempty"`
	Rules     geo.RuleSet `yaml:"rules,omitempty"`
}

// File is the top-level registry document.
type File struct {
	Datasets []Descriptor `yaml:"datasets"`
}

// Load reads a registry file. Relative dataset paths are resolved against
// the registry file's directory. Order is preserved: it is the precedence
// order of the datasets.
func Load(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(f.Datasets))
	for i := range f.Datasets {
		d := &f.Datasets[i]
		if err := d.Validate(); err != nil {
			return nil, eris.Wrapf(err, "registry: dataset %d", i)
		}
		if seen[d.Name] {
			return nil, eris.Errorf("registry: duplicate dataset name %q", d.Name)
		}
		seen[d.Name] = true
		if !filepath.IsAbs(d.Path) {
			d.Path = filepath.Join(base, d.Path)
		}
	}

	return f.Datasets, nil
}

// Validate checks the descriptor's required fields, preset and rules.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return eris.New("registry: name is required")
	}
	if d.Path == "" {
		return eris.Errorf("registry: %s: path is required", d.Name)
	}
	if d.NameField == "" {
		return eris.Errorf("registry: %s: name_field is required", d.Name)
	}
	if _, err := presetRules(d.Preset); err != nil {
		return eris.Wrapf(err, "registry: %s", d.Name)
	}
	if err := d.Rules.Validate(); err != nil {
		return eris.Wrapf(err, "registry: %s", d.Name)
	}
	return nil
}

// Dataset converts the descriptor into a geo.Dataset. Preset rules come
// before the descriptor's own rules.
func (d Descriptor) Dataset() (geo.Dataset, error) {
	rules, err := presetRules(d.Preset)
	if err != nil {
		return geo.Dataset{}, eris.Wrapf(err, "registry: %s", d.Name)
	}
	rules = append(rules, d.Rules...)
	return geo.Dataset{
		Name:      d.Name,
		Path:      d.Path,
		NameField: d.NameField,
		CRS:       d.CRS,
		Rules:     rules,
	}, nil
}

func presetRules(name string) (geo.RuleSet, error) {
	switch strings.ToLower(name) {
	case "", PresetNone:
		return nil, nil
	case PresetPADUS:
		return geo.PADUSRules(), nil
	default:
		return nil, eris.Errorf("registry: unknown rule preset %q", name)
	}
}
