/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives tool parameter schemas from Go types and renders
// them for both model SDKs.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// For reflects the schema of T. Pointer types describe their element.
func For[T any]() *jsonschema.Schema {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return reflector.ReflectFromType(typ)
}

// ToMap renders s as the plain map the Anthropic SDK embeds in input schemas.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshalling schema: %w", err)
	}
	delete(out, "$schema")
	return out, nil
}

// ToGenai converts s to a Gemini schema. Keywords Gemini has no field for are dropped.
func ToGenai(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Pattern:     s.Pattern,
		Type:        genaiType(s.Type),
		Required:    s.Required,
		Default:     s.Default,
	}
	for _, v := range s.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(v))
	}
	if s.MinLength != nil {
		out.MinLength = genai.Ptr(int64(*s.MinLength))
	}
	if s.MaxLength != nil {
		out.MaxLength = genai.Ptr(int64(*s.MaxLength))
	}
	if s.MinItems != nil {
		out.MinItems = genai.Ptr(int64(*s.MinItems))
	}
	if s.MaxItems != nil {
		out.MaxItems = genai.Ptr(int64(*s.MaxItems))
	}
	if s.Minimum != "" {
		if v, err := s.Minimum.Float64(); err == nil {
			out.Minimum = &v
		}
	}
	if s.Maximum != "" {
		if v, err := s.Maximum.Float64(); err == nil {
			out.Maximum = &v
		}
	}
	if s.Items != nil {
		out.Items = ToGenai(s.Items)
	}
	for _, child := range s.AnyOf {
		out.AnyOf = append(out.AnyOf, ToGenai(child))
	}
	if s.Properties != nil {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = ToGenai(pair.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	case "null":
		return genai.TypeNULL
	}
	return ""
}
