// Package schema interprets MCP tool input schemas: it lists parameters in
// declaration order, converts positional command arguments to a JSON
// arguments object and renders human-readable tool descriptions.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// Param is one top-level property of a tool's input schema.
type Param struct {
	Name     string
	Required bool
	Schema   *jsonschema.Schema
}

// Parse decodes a tool input schema. A missing schema is an object with no
// properties.
func Parse(raw json.RawMessage) (*jsonschema.Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &jsonschema.Schema{Type: "object"}, nil
	}

	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode input schema: %w", err)
	}

	return &s, nil
}

// Params lists required parameters first, in the order of the schema's
// required list, then optional parameters in declaration order.
func Params(s *jsonschema.Schema) []Param {
	if s == nil || s.Properties == nil {
		return nil
	}

	params := make([]Param, 0, s.Properties.Len())

	for _, name := range s.Required {
		if prop, ok := s.Properties.Get(name); ok {
			params = append(params, Param{Name: name, Required: true, Schema: prop})
		}
	}

	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if slices.Contains(s.Required, pair.Key) {
			continue
		}

		params = append(params, Param{Name: pair.Key, Schema: pair.Value})
	}

	return params
}

// declared lists parameters in declaration order with their requiredness.
func declared(s *jsonschema.Schema) []Param {
	if s == nil || s.Properties == nil {
		return nil
	}

	params := make([]Param, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		params = append(params, Param{
			Name:     pair.Key,
			Required: slices.Contains(s.Required, pair.Key),
			Schema:   pair.Value,
		})
	}

	return params
}

// TypeName returns the declared JSON type of s, or fallback when none is
// declared. Nullable unions expressed through anyOf resolve to their
// non-null member.
func TypeName(s *jsonschema.Schema, fallback string) string {
	if s == nil {
		return fallback
	}

	if s.Type != "" {
		return s.Type
	}

	for _, sub := range s.AnyOf {
		if sub != nil && sub.Type != "" && sub.Type != "null" {
			return sub.Type
		}
	}

	for _, sub := range s.OneOf {
		if sub != nil && sub.Type != "" && sub.Type != "null" {
			return sub.Type
		}
	}

	return fallback
}
