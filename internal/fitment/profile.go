// Package fitment extracts vehicle fitment attributes from chat text.
package fitment

import "strings"

// Field names used in questions and logs.
const (
	FieldYear   = "year"
	FieldMake   = "make"
	FieldModel  = "model"
	FieldBed    = "bed"
	FieldTrim   = "trim"
	FieldEngine = "engine"
)

// CoreFields are the fields needed before fitment counts as known.
var CoreFields = []string{FieldYear, FieldMake, FieldModel}

// Profile is a partial vehicle description. Empty strings are unknown.
type Profile struct {
	Year   string `json:"year,omitempty"`
	Make   string `json:"make,omitempty"`
	Model  string `json:"model,omitempty"`
	Bed    string `json:"bed,omitempty"`
	Trim   string `json:"trim,omitempty"`
	Engine string `json:"engine,omitempty"`
}

func (p Profile) Get(field string) string {
	switch field {
	case FieldYear:
		return p.Year
	case FieldMake:
		return p.Make
	case FieldModel:
		return p.Model
	case FieldBed:
		return p.Bed
	case FieldTrim:
		return p.Trim
	case FieldEngine:
		return p.Engine
	default:
		return ""
	}
}

// IsEmpty reports whether no field is known.
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// HasCore reports whether year, make and model are all known.
func (p Profile) HasCore() bool {
	return len(p.MissingCore()) == 0
}

// MissingCore lists the unknown core fields in year, make, model order.
func (p Profile) MissingCore() []string {
	var missing []string
	for _, f := range CoreFields {
		if p.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Merge fills fields that are unknown in p with values from next.
// Known fields are never overwritten.
func (p Profile) Merge(next Profile) Profile {
	out := p
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	fill(&out.Year, next.Year)
	fill(&out.Make, next.Make)
	fill(&out.Model, next.Model)
	fill(&out.Bed, next.Bed)
	fill(&out.Trim, next.Trim)
	fill(&out.Engine, next.Engine)
	return out
}

// Conflicts reports whether next names a different value for any core field p already knows.
func (p Profile) Conflicts(next Profile) bool {
	for _, f := range CoreFields {
		a, b := p.Get(f), next.Get(f)
		if a != "" && b != "" && !strings.EqualFold(a, b) {
			return true
		}
	}
	return false
}

// Vehicle renders the known core fields, e.g. "2020 Ford F-150".
func (p Profile) Vehicle() string {
	parts := make([]string, 0, 3)
	for _, v := range []string{p.Year, p.Make, p.Model} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Describe renders every known field for prompts.
func (p Profile) Describe() string {
	out := p.Vehicle()
	extras := make([]string, 0, 3)
	if p.Trim != "" {
		extras = append(extras, p.Trim+" trim")
	}
	if p.Bed != "" {
		extras = append(extras, p.Bed+" bed")
	}
	if p.Engine != "" {
		extras = append(extras, p.Engine+" engine")
	}
	if len(extras) == 0 {
		return out
	}
	if out == "" {
		return strings.Join(extras, ", ")
	}
	return out + " (" + strings.Join(extras, ", ") + ")"
}

// JoinFields renders a field list for a question: "year, make, and model".
func JoinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}
