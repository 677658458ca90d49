/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googletool

import (
	"context"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall"
	"chainguard.dev/ghagent/agents/toolcall/params"
	"google.golang.org/genai"
)

// Metadata is a tool as the Gemini executor consumes it.
type Metadata[Resp any] struct {
	Definition *genai.FunctionDeclaration

	// Handler answers a function call. Setting *result ends the execution.
	Handler func(ctx context.Context, call *genai.FunctionCall, trace *agenttrace.Trace[Resp], result *Resp) *genai.FunctionResponse
}

func schemaType(t string) genai.Type {
	switch t {
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
	default:
		return genai.TypeString
	}
}

// Declaration renders def as a function declaration.
func Declaration(def toolcall.Definition) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(def.Parameters))
	for _, p := range def.Parameters {
		props[p.Name] = &genai.Schema{
			Type:        schemaType(p.Type),
			Description: p.Description,
		}
	}
	return &genai.FunctionDeclaration{
		Name:        def.Name,
		Description: def.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   def.Required(),
		},
	}
}

// FromTool converts t for use with the Gemini executor.
func FromTool[Resp any](t toolcall.Tool[Resp]) Metadata[Resp] {
	return Metadata[Resp]{
		Definition: Declaration(t.Def),
		Handler: func(ctx context.Context, call *genai.FunctionCall, trace *agenttrace.Trace[Resp], result *Resp) *genai.FunctionResponse {
			args := call.Args
			if args == nil {
				args = map[string]any{}
			}
			resp := t.Handler(ctx, toolcall.ToolCall{ID: call.ID, Name: call.Name, Args: args}, trace, result)
			return &genai.FunctionResponse{ID: call.ID, Name: call.Name, Response: resp}
		},
	}
}

// FromTools converts every tool in tools, keeping their names.
func FromTools[Resp any](tools map[string]toolcall.Tool[Resp]) map[string]Metadata[Resp] {
	out := make(map[string]Metadata[Resp], len(tools))
	for name, t := range tools {
		out[name] = FromTool(t)
	}
	return out
}

// Param extracts a required argument of call.
func Param[T any](call *genai.FunctionCall, name string) (T, *genai.FunctionResponse) {
	v, err := params.Extract[T](call.Args, name)
	if err != nil {
		return v, Error(call, "%s", err)
	}
	return v, nil
}

// OptionalParam extracts an optional argument of call, falling back to defaultValue.
func OptionalParam[T any](call *genai.FunctionCall, name string, defaultValue T) (T, *genai.FunctionResponse) {
	v, err := params.ExtractOptional(call.Args, name, defaultValue)
	if err != nil {
		return v, Error(call, "%s", err)
	}
	return v, nil
}

// Error answers call with an error payload.
func Error(call *genai.FunctionCall, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: call.ID, Name: call.Name, Response: params.Error(format, args...)}
}

// ErrorWithContext answers call with err and extra fields.
func ErrorWithContext(call *genai.FunctionCall, err error, context map[string]any) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: call.ID, Name: call.Name, Response: params.ErrorWithContext(err, context)}
}
