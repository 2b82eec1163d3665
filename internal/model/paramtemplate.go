package model

import "fmt"

// ParamKind tags the type carried by a ParamValue / ParamSpec.
type ParamKind string

const (
	ParamInt   ParamKind = "int"
	ParamFloat ParamKind = "float"
	ParamBool  ParamKind = "bool"
	ParamEnum  ParamKind = "enum"
)

// ParamSpec describes one entry of a strategy's Parameter Template: its
// default, kind, and the constraint that bounds acceptable values.
type ParamSpec struct {
	Name        string
	Default     ParamValue
	Kind        ParamKind
	Min         float64  // used when Kind is int/float
	Max         float64  // used when Kind is int/float
	Choices     []string // used when Kind is enum
	Description string
}

// ParamValue is a tagged union holding exactly one of the four kinds.
type ParamValue struct {
	Kind    ParamKind
	Int     int64
	Float   float64
	Bool    bool
	Enum    string
}

func IntValue(v int64) ParamValue     { return ParamValue{Kind: ParamInt, Int: v} }
func FloatValue(v float64) ParamValue { return ParamValue{Kind: ParamFloat, Float: v} }
func BoolValue(v bool) ParamValue     { return ParamValue{Kind: ParamBool, Bool: v} }
func EnumValue(v string) ParamValue   { return ParamValue{Kind: ParamEnum, Enum: v} }

// AsFloat returns the value as a float64 regardless of whether it was
// stored as Int or Float, for use in arithmetic against thresholds.
func (v ParamValue) AsFloat() float64 {
	switch v.Kind {
	case ParamInt:
		return float64(v.Int)
	case ParamFloat:
		return v.Float
	default:
		return 0
	}
}

// ParameterTemplate is an ordered set of ParamSpecs keyed by name. Order
// is preserved for stable CLI/API rendering.
type ParameterTemplate struct {
	Specs []ParamSpec
}

// Get returns the spec for name, if present.
func (t ParameterTemplate) Get(name string) (ParamSpec, bool) {
	for _, s := range t.Specs {
		if s.Name == name {
			return s, true
		}
	}
	return ParamSpec{}, false
}

// Defaults returns a fresh params map populated with every spec's default.
func (t ParameterTemplate) Defaults() map[string]ParamValue {
	out := make(map[string]ParamValue, len(t.Specs))
	for _, s := range t.Specs {
		out[s.Name] = s.Default
	}
	return out
}

// Validate checks params against the template: unknown keys, wrong kinds,
// and out-of-range/choice values are all collected and returned together
// so a caller sees every offending field in one error, not just the
// first. A normalized copy (template defaults overlaid with params) is
// returned on success.
func (t ParameterTemplate) Validate(params map[string]ParamValue) (map[string]ParamValue, error) {
	var bad []string
	known := make(map[string]bool, len(t.Specs))
	for _, s := range t.Specs {
		known[s.Name] = true
	}
	for name := range params {
		if !known[name] {
			bad = append(bad, fmt.Sprintf("%s: unknown parameter", name))
		}
	}

	normalized := t.Defaults()
	for _, s := range t.Specs {
		v, given := params[s.Name]
		if !given {
			continue
		}
		if v.Kind != s.Kind {
			bad = append(bad, fmt.Sprintf("%s: expected kind %s, got %s", s.Name, s.Kind, v.Kind))
			continue
		}
		switch s.Kind {
		case ParamInt, ParamFloat:
			f := v.AsFloat()
			if f < s.Min || f > s.Max {
				bad = append(bad, fmt.Sprintf("%s: value %v out of range [%v,%v]", s.Name, f, s.Min, s.Max))
				continue
			}
		case ParamEnum:
			ok := false
			for _, c := range s.Choices {
				if c == v.Enum {
					ok = true
					break
				}
			}
			if !ok {
				bad = append(bad, fmt.Sprintf("%s: value %q not one of %v", s.Name, v.Enum, s.Choices))
				continue
			}
		}
		normalized[s.Name] = v
	}

	if len(bad) > 0 {
		return nil, &ParameterValidationError{Fields: bad}
	}
	return normalized, nil
}

// ParameterValidationError lists every offending field from one
// Validate call.
type ParameterValidationError struct {
	Fields []string
}

func (e *ParameterValidationError) Error() string {
	return fmt.Sprintf("parameter validation failed: %v", e.Fields)
}
