/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder renders prompt templates with {{name}} placeholders.
//
// A Prompt is immutable: Bind returns a copy, so one parsed template can
// serve many requests concurrently. Every placeholder must be bound exactly
// once before Render succeeds.
package promptbuilder

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Bindable is implemented by request types that fill in a prompt.
type Bindable interface {
	Bind(p *Prompt) (*Prompt, error)
}

// Value renders the text bound to a placeholder.
type Value interface {
	render() (string, error)
}

type text string

func (t text) render() (string, error) { return string(t), nil }

// Text binds s verbatim.
func Text(s string) Value { return text(s) }

type jsonValue struct{ v any }

func (j jsonValue) render() (string, error) {
	b, err := json.MarshalIndent(j.v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling JSON: %w", err)
	}
	return string(b), nil
}

// JSON binds v as indented JSON.
func JSON(v any) Value { return jsonValue{v} }

type yamlValue struct{ v any }

func (y yamlValue) render() (string, error) {
	b, err := yaml.Marshal(y.v)
	if err != nil {
		return "", fmt.Errorf("marshalling YAML: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// YAML binds v as a YAML document.
func YAML(v any) Value { return yamlValue{v} }

// segment is literal text followed by an optional placeholder.
type segment struct {
	text string
	name string
}

// Prompt is a parsed template and the values bound so far.
type Prompt struct {
	segments []segment
	values   map[string]Value
}

// Parse splits tmpl into literal text and {{name}} placeholders. Names start
// with a letter and continue with letters, digits or underscores.
func Parse(tmpl string) (*Prompt, error) {
	p := &Prompt{values: map[string]Value{}}
	for {
		start := strings.Index(tmpl, "{{")
		if start < 0 {
			p.segments = append(p.segments, segment{text: tmpl})
			return p, nil
		}
		end := strings.Index(tmpl[start:], "}}")
		if end < 0 {
			return nil, errors.New("unclosed placeholder: missing '}}'")
		}
		name := strings.TrimSpace(tmpl[start+2 : start+end])
		if !validName(name) {
			return nil, fmt.Errorf("invalid placeholder name %q", name)
		}
		p.segments = append(p.segments, segment{text: tmpl[:start], name: name})
		tmpl = tmpl[start+end+2:]
	}
}

// MustParse is Parse for templates known at compile time.
func MustParse(tmpl string) *Prompt {
	p, err := Parse(tmpl)
	if err != nil {
		panic(err)
	}
	return p
}

func validName(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}

// Placeholders returns the distinct placeholder names, sorted.
func (p *Prompt) Placeholders() []string {
	var names []string
	for _, s := range p.segments {
		if s.name != "" && !slices.Contains(names, s.name) {
			names = append(names, s.name)
		}
	}
	slices.Sort(names)
	return names
}

// Bind returns a copy of p with name bound to v.
func (p *Prompt) Bind(name string, v Value) (*Prompt, error) {
	if !slices.ContainsFunc(p.segments, func(s segment) bool { return s.name == name }) {
		return nil, fmt.Errorf("placeholder %q not found in template", name)
	}
	if _, ok := p.values[name]; ok {
		return nil, fmt.Errorf("placeholder %q already bound", name)
	}
	out := &Prompt{segments: p.segments, values: maps.Clone(p.values)}
	out.values[name] = v
	return out, nil
}

// MustBind is Bind that panics on error.
func (p *Prompt) MustBind(name string, v Value) *Prompt {
	out, err := p.Bind(name, v)
	if err != nil {
		panic(err)
	}
	return out
}

// Render substitutes every placeholder. Unbound placeholders are an error.
func (p *Prompt) Render() (string, error) {
	var missing []string
	for _, name := range p.Placeholders() {
		if _, ok := p.values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("unbound placeholders: %s", strings.Join(missing, ", "))
	}

	rendered := make(map[string]string, len(p.values))
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteString(s.text)
		if s.name == "" {
			continue
		}
		out, ok := rendered[s.name]
		if !ok {
			var err error
			if out, err = p.values[s.name].render(); err != nil {
				return "", fmt.Errorf("rendering %s: %w", s.name, err)
			}
			rendered[s.name] = out
		}
		b.WriteString(out)
	}
	return b.String(), nil
}
