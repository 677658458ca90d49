/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metaagent builds a tool-using agent on top of either model family.
//
// An agent is generic over three types:
//   - Req: the request, bound into the user prompt (promptbuilder.Bindable)
//   - Resp: the structured result delivered through submit_result
//   - CB: the callback set the toolcall providers turn into tools
//
// The model name picks the executor: "gemini-*" runs on Gemini, "claude-*"
// runs on Claude. A Provider carries the credentials for either one, falling
// back to Vertex AI when no API key is set.
//
//	type Callbacks = toolcall.ImageTools[toolcall.RepositoryTools[toolcall.EmptyTools]]
//
//	tools := toolcall.NewImageToolsProvider[*Result](
//	    toolcall.NewRepositoryToolsProvider[*Result](
//	        toolcall.NewEmptyToolsProvider[*Result]()))
//
//	agent, err := metaagent.New[*Request, *Result, Callbacks](ctx, provider, "gemini-2.0-flash",
//	    metaagent.Config[*Result, Callbacks]{UserPrompt: prompt, Tools: tools})
//	result, err := agent.Execute(ctx, request, callbacks)
package metaagent
