/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package submitresult

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/schema"
	"chainguard.dev/ghagent/agents/toolcall/claudetool"
	"github.com/anthropics/anthropic-sdk-go"
)

// ClaudeTool returns submit_result for the Claude executor.
func ClaudeTool[Resp any]() (claudetool.Metadata[Resp], error) {
	payload, err := schema.ToMap(schema.For[Resp]())
	if err != nil {
		return claudetool.Metadata[Resp]{}, fmt.Errorf("deriving %s schema: %w", payloadName, err)
	}
	return claudetool.Metadata[Resp]{
		Definition: anthropic.ToolParam{
			Name:        ToolName,
			Description: anthropic.String(description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type: "object",
				Properties: map[string]any{
					"reasoning": map[string]any{"type": "string", "description": reasoningDescription},
					payloadName: payload,
				},
				Required: []string{"reasoning", payloadName},
			},
		},
		Handler: func(ctx context.Context, toolUse anthropic.ToolUseBlock, trace *agenttrace.Trace[Resp], result *Resp) map[string]any {
			p, errResp := claudetool.NewParams(toolUse)
			if errResp != nil {
				trace.BadToolCall(toolUse.ID, toolUse.Name, map[string]any{"input": string(toolUse.Input)}, errors.New("malformed tool input"))
				return errResp
			}
			return submit(ctx, toolUse.ID, toolUse.Name, p.RawInputs(), trace, result)
		},
	}, nil
}
