package geo

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Action is what a matching Rule does to a containing polygon.
type Action string

// Rule actions.
const (
	// ActionExclude drops the polygon and keeps scanning.
	ActionExclude Action = "exclude"
	// ActionFallback keeps the polygon only if nothing better matches.
	ActionFallback Action = "fallback"
)

// NameFieldRef in Rule.Field refers to the dataset's configured name field.
const NameFieldRef = "@name"

// Verdict classifies a containing polygon's record.
type Verdict int

// Verdicts, strongest first.
const (
	VerdictStrong Verdict = iota
	VerdictFallback
	VerdictExcluded
)

func (v Verdict) String() string {
	switch v {
	case VerdictStrong:
		return "strong"
	case VerdictFallback:
		return "fallback"
	case VerdictExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// MarshalText renders the verdict name in JSON output.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Rule is one declarative record predicate. Exactly one of Equals or
// Contains is set; a record without Field never matches.
type Rule struct {
	Field    string `yaml:"field"`
	Equals   string `yaml:"equals,omitempty"`
	Contains string `yaml:"contains,omitempty"`
	Action   Action `yaml:"action"`
}

// Validate checks that the rule is well formed.
func (r Rule) Validate() error {
	if r.Field == "" {
		return eris.New("geo: rule field is required")
	}
	if (r.Equals == "") == (r.Contains == "") {
		return eris.Errorf("geo: rule on %s needs exactly one of equals or contains", r.Field)
	}
	switch r.Action {
	case ActionExclude, ActionFallback:
	default:
		return eris.Errorf("geo: rule on %s has unknown action %q", r.Field, r.Action)
	}
	return nil
}

// Matches reports whether rec satisfies the predicate.
func (r Rule) Matches(rec Record, nameField string) bool {
	field := r.Field
	if field == NameFieldRef {
		field = nameField
	}
	v, ok := rec.GetField(field)
	if !ok {
		return false
	}
	if r.Equals != "" {
		return v == r.Equals
	}
	return strings.Contains(v, r.Contains)
}

// RuleSet is the ordered list of predicates applied to one dataset.
type RuleSet []Rule

// Validate checks every rule.
func (rs RuleSet) Validate() error {
	for i, r := range rs {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "geo: rule %d", i)
		}
	}
	return nil
}

// Classify returns the verdict for a containing polygon's record.
// Exclusion takes precedence over fallback.
func (rs RuleSet) Classify(rec Record, nameField string) Verdict {
	fallback := false
	for _, r := range rs {
		if !r.Matches(rec, nameField) {
			continue
		}
		if r.Action == ActionExclude {
			return VerdictExcluded
		}
		fallback = true
	}
	if fallback {
		return VerdictFallback
	}
	return VerdictStrong
}

// PADUSRules returns the data-quality predicates tuned for the USGS
// Protected Areas Database (PAD-US) state extracts. Crowd-sourced
// interest records, catch-all land categories, administrative offices,
// military land and generically named parks are excluded. Proclamation
// boundaries are only used when nothing more specific contains the point.
func PADUSRules() RuleSet {
	return RuleSet{
		{Field: "GIS_Src", Contains: "data.georgiaspatial.org", Action: ActionExclude},
		{Field: "Loc_Nm", Contains: "FLAP", Action: ActionExclude},
		{Field: "Loc_Nm", Contains: "State Trust Land", Action: ActionExclude},
		{Field: "Unit_Nm", Contains: "Field Office", Action: ActionExclude},
		{Field: "Des_Tp", Contains: "MIL", Action: ActionExclude},
		{Field: NameFieldRef, Equals: "Park", Action: ActionExclude},
		{Field: "FeatClass", Contains: "Proclamation", Action: ActionFallback},
	}
}
