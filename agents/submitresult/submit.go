/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package submitresult builds the submit_result tool that ends an agent
// execution with a structured response.
//
// The payload schema is reflected from the response type, so the model sees
// the same fields the caller decodes.
package submitresult

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall/params"
	"github.com/chainguard-dev/clog"
)

const (
	// ToolName is the name the executors reserve for the tool.
	ToolName = "submit_result"

	description          = "Submit the final result once the task is complete. Call this exactly once, after every other tool call."
	payloadName          = "result"
	reasoningDescription = "Why you are confident the task is complete."
)

// submit decodes the payload in args into *result.
func submit[Resp any](ctx context.Context, id, name string, args map[string]any, trace *agenttrace.Trace[Resp], result *Resp) map[string]any {
	reasoning, err := params.Extract[string](args, "reasoning")
	if err != nil {
		trace.BadToolCall(id, name, args, err)
		return params.Error("%s", err)
	}
	payload, err := params.Extract[map[string]any](args, payloadName)
	if err != nil {
		trace.BadToolCall(id, name, args, err)
		return params.Error("%s", err)
	}

	tc := trace.StartToolCall(id, name, args)
	parsed, err := decode[Resp](payload)
	if err != nil {
		tc.Complete(nil, err)
		return params.Error("the %s payload does not match the expected schema: %v", payloadName, err)
	}
	clog.FromContext(ctx).With("reasoning", reasoning).Info("Result submitted")

	*result = parsed
	resp := map[string]any{"success": true, "message": "Result submitted."}
	tc.Complete(resp, nil)
	return resp
}

// decode converts a generic JSON object to Resp. Pointer types are allocated.
func decode[Resp any](payload map[string]any) (Resp, error) {
	var out Resp
	b, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("marshalling payload: %w", err)
	}
	if typ := reflect.TypeFor[Resp](); typ.Kind() == reflect.Pointer {
		v := reflect.New(typ.Elem())
		if err := json.Unmarshal(b, v.Interface()); err != nil {
			return out, err
		}
		return v.Interface().(Resp), nil
	}
	err = json.Unmarshal(b, &out)
	return out, err
}
