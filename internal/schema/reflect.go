package schema

import (
	"github.com/invopop/jsonschema"

	"github.com/hanq-io/toolbelt/mcp"
)

// Reflect derives a declarative input shape from a typed argument struct so
// the same Go type drives advertisement, validation, and handler decoding.
// Field names, descriptions, enums, and required/optional flags come from the
// struct's json and jsonschema tags.
func Reflect[A any]() mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference: true, // inline defs
		ExpandedStruct: true, // struct fields at the root
	}
	s := r.Reflect(new(A))

	// Only object schemas map onto tool input; anything else advertises as an
	// empty object.
	if s == nil || s.Type != "object" {
		return mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]mcp.SchemaProperty{},
		}
	}

	props := make(map[string]mcp.SchemaProperty)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			props[el.Key] = toProperty(el.Value)
		}
	}
	var required []string
	required = append(required, s.Required...)

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// toProperty maps a reflected jsonschema node onto the simplified wire shape.
func toProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}
	if s.Type == "array" && s.Items != nil {
		item := toProperty(s.Items)
		p.Items = &item
	}
	if s.Type == "object" && s.Properties != nil {
		m := make(map[string]mcp.SchemaProperty, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			m[el.Key] = toProperty(el.Value)
		}
		p.Properties = m
	}
	return p
}
