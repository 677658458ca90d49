/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"context"
	"errors"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
)

// Metadata is a tool as the Claude executor consumes it.
type Metadata[Resp any] struct {
	Definition anthropic.ToolParam

	// Handler serves a tool_use block. Setting *result ends the execution.
	Handler func(ctx context.Context, toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[Resp], result *Resp) map[string]any
}

// InputSchema renders the parameters of def as a JSON schema object.
func InputSchema(def toolcall.Definition) anthropic.ToolInputSchemaParam {
	props := make(map[string]any, len(def.Parameters))
	for _, p := range def.Parameters {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	return anthropic.ToolInputSchemaParam{
		Type:       "object",
		Properties: props,
		Required:   def.Required(),
	}
}

// FromTool converts t for use with the Claude executor.
func FromTool[Resp any](t toolcall.Tool[Resp]) Metadata[Resp] {
	return Metadata[Resp]{
		Definition: anthropic.ToolParam{
			Name:        t.Def.Name,
			Description: anthropic.String(t.Def.Description),
			InputSchema: InputSchema(t.Def),
		},
		Handler: func(ctx context.Context, toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[Resp], result *Resp) map[string]any {
			p, errResp := NewParams(toolUse)
			if errResp != nil {
				trace.BadToolCall(toolUse.ID, toolUse.Name, map[string]any{"input": string(toolUse.Input)}, errors.New("malformed tool input"))
				return errResp
			}
			return t.Handler(ctx, toolcall.ToolCall{
				ID:   toolUse.ID,
				Name: toolUse.Name,
				Args: p.RawInputs(),
			}, trace, result)
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
