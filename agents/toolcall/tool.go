/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"fmt"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall/params"
)

// ToolCall is a model's request to run a tool, decoded from either SDK.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Definition is the schema a model sees for a tool.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter is one argument of a tool.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean" or "number"
	Description string
	Required    bool
}

// Handler runs a tool call. Setting *result ends the agent execution with that value.
type Handler[Resp any] func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], result *Resp) map[string]any

// Tool pairs a definition with the handler that serves it.
type Tool[Resp any] struct {
	Def     Definition
	Handler Handler[Resp]
}

// badCallRecorder is satisfied by *agenttrace.Trace of any result type.
type badCallRecorder interface {
	BadToolCall(id, name string, params map[string]any, err error)
}

// Param extracts a required argument. A missing or mistyped argument is
// recorded as a bad call on trace and the returned payload is sent back to the model.
func Param[T any](call ToolCall, trace badCallRecorder, name string) (T, map[string]any) {
	v, err := params.Extract[T](call.Args, name)
	if err != nil {
		trace.BadToolCall(call.ID, call.Name, call.Args, fmt.Errorf("invalid %s parameter: %w", name, err))
		return v, params.Error("%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional argument, falling back to defaultValue.
func OptionalParam[T any](call ToolCall, name string, defaultValue T) (T, map[string]any) {
	v, err := params.ExtractOptional(call.Args, name, defaultValue)
	if err != nil {
		return v, params.Error("%s", err)
	}
	return v, nil
}
