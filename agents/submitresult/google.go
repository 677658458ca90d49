/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package submitresult

import (
	"context"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/schema"
	"chainguard.dev/ghagent/agents/toolcall/googletool"
	"google.golang.org/genai"
)

// GoogleTool returns submit_result for the Gemini executor.
func GoogleTool[Resp any]() (googletool.Metadata[Resp], error) {
	return googletool.Metadata[Resp]{
		Definition: &genai.FunctionDeclaration{
			Name:        ToolName,
			Description: description,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reasoning": {Type: genai.TypeString, Description: reasoningDescription},
					payloadName: schema.ToGenai(schema.For[Resp]()),
				},
				Required: []string{"reasoning", payloadName},
			},
		},
		Handler: func(ctx context.Context, call *genai.FunctionCall, trace *agenttrace.Trace[Resp], result *Resp) *genai.FunctionResponse {
			args := call.Args
			if args == nil {
				args = map[string]any{}
			}
			return &genai.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: submit(ctx, call.ID, call.Name, args, trace, result),
			}
		},
	}, nil
}
