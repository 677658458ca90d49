/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"encoding/json"
	"maps"

	"chainguard.dev/ghagent/agents/toolcall/params"
	"github.com/anthropics/anthropic-sdk-go"
)

// Params holds the decoded input of a tool_use block.
type Params struct {
	input map[string]any
}

// NewParams decodes the input of toolUse once. On failure it returns the
// error payload for the model.
func NewParams(toolUse anthropic.ToolUseBlock) (*Params, map[string]any) {
	input := map[string]any{}
	if len(toolUse.Input) > 0 {
		if err := json.Unmarshal(toolUse.Input, &input); err != nil {
			return nil, Error("Failed to parse tool input: %v", err)
		}
	}
	return &Params{input: input}, nil
}

// Get returns the raw value of the argument called name.
func (p *Params) Get(name string) (any, bool) {
	v, ok := p.input[name]
	return v, ok
}

// RawInputs returns a shallow copy of the decoded input.
func (p *Params) RawInputs() map[string]any {
	return maps.Clone(p.input)
}

// Param extracts a required argument.
func Param[T any](p *Params, name string) (T, map[string]any) {
	v, err := params.Extract[T](p.input, name)
	if err != nil {
		return v, Error("%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional argument, falling back to defaultValue.
func OptionalParam[T any](p *Params, name string, defaultValue T) (T, map[string]any) {
	v, err := params.ExtractOptional(p.input, name, defaultValue)
	if err != nil {
		return v, Error("%s", err)
	}
	return v, nil
}

// Error returns an error payload for the model.
func Error(format string, args ...any) map[string]any {
	return params.Error(format, args...)
}

// ErrorWithContext returns an error payload carrying extra fields.
func ErrorWithContext(err error, context map[string]any) map[string]any {
	return params.ErrorWithContext(err, context)
}
