// Package schema turns declared tool input shapes into enforced contracts.
//
// A mcp.ToolInputSchema serves two masters: it is advertised verbatim to the
// client as documentation, and it is the rule set Validate applies to raw
// invocation arguments. Adding a capability therefore only adds data; no new
// dispatch logic is required.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/hanq-io/toolbelt/mcp"
)

// Args is a validated argument set. It is only ever produced by Validate, so
// handlers can trust that every declared constraint holds.
type Args map[string]any

// String returns the named string argument, or "" when absent.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Number returns the named numeric argument, or 0 when absent.
func (a Args) Number(key string) float64 {
	n, _ := a[key].(float64)
	return n
}

// Has reports whether the argument was supplied.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// MissingFieldError reports a required field absent from the arguments.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Field)
}

// TypeMismatchError reports a field whose value has the wrong primitive kind.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("argument %q must be a %s, got %v (%T)", e.Field, e.Want, e.Got, e.Got)
}

// InvalidEnumValueError reports a value outside a field's declared literals.
type InvalidEnumValueError struct {
	Field   string
	Value   any
	Allowed []any
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("argument %q must be one of %v, got %v", e.Field, e.Allowed, e.Value)
}

// Validate checks raw, untrusted arguments against a declared input shape and
// returns the typed argument set. It never invokes a handler and has no side
// effects. Fields present in raw but not declared in the schema are ignored
// for forward compatibility.
func Validate(s mcp.ToolInputSchema, raw json.RawMessage) (Args, error) {
	var in map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	required := make(map[string]bool, len(s.Required))
	for _, f := range s.Required {
		required[f] = true
	}

	out := make(Args, len(s.Properties))
	for name, prop := range s.Properties {
		v, present := in[name]
		if !present {
			if required[name] {
				return nil, &MissingFieldError{Field: name}
			}
			continue
		}
		if err := checkKind(name, prop, v); err != nil {
			return nil, err
		}
		if len(prop.Enum) > 0 && !enumHas(prop.Enum, v) {
			return nil, &InvalidEnumValueError{Field: name, Value: v, Allowed: prop.Enum}
		}
		out[name] = v
	}
	return out, nil
}

func checkKind(name string, prop mcp.SchemaProperty, v any) error {
	switch prop.Type {
	case "string":
		if _, ok := v.(string); !ok {
			return &TypeMismatchError{Field: name, Want: "string", Got: v}
		}
	case "number", "integer":
		if _, ok := v.(float64); !ok {
			return &TypeMismatchError{Field: name, Want: "number", Got: v}
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return &TypeMismatchError{Field: name, Want: "boolean", Got: v}
		}
	case "", "object", "array":
		// Unconstrained or structured; left to the handler.
	default:
		return &TypeMismatchError{Field: name, Want: prop.Type, Got: v}
	}
	return nil
}

func enumHas(allowed []any, v any) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
		// JSON numbers decode as float64; enum literals reflected from Go
		// types may be typed integers.
		if af, aok := toFloat(a); aok {
			if vf, vok := toFloat(v); vok && af == vf {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
