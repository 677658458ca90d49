/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records what an agent did while working on a repository task.

A Trace spans one agent execution from the rendered prompt to the submitted
result. Each tool the model invokes is captured as a ToolCall, and both are
mirrored as OpenTelemetry spans.

Traces are created through a Tracer found on the context:

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository: "owner/site",
		Branch:     "dev",
		Task:       "upload-logo",
	})
	ctx = agenttrace.WithTracer[string](ctx, agenttrace.ByCode[string](func(tr *agenttrace.Trace[string]) {
		log.Printf("trace %s finished with %d tool calls", tr.ID, len(tr.ToolCalls))
	}))

	tr := agenttrace.StartTrace[string](ctx, "Upload ./logo.png")
	tc := tr.StartToolCall("call-1", "push_image_to_github", map[string]any{"path": "./logo.png"})
	tc.Complete("Created image at https://github.com/owner/site/blob/dev/logo.png", nil)
	tr.Complete("done", nil)

When no tracer is installed, completed traces are logged through clog.
*/
package agenttrace
