/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor runs a tool-using conversation with a Claude model.
//
// The executor renders the request into the user prompt, offers the tools,
// runs every tool_use block the model emits and feeds the results back until
// a tool sets the response (normally submit_result) or the model answers
// with JSON text.
//
//	exec, err := claudeexecutor.New[*Task, *Result](client, prompt,
//		claudeexecutor.WithModel[*Task, *Result]("claude-sonnet-4@20250514"),
//		claudeexecutor.WithSubmitResult[*Task](submitresult.ClaudeTool[*Result]),
//	)
//	res, err := exec.Execute(ctx, task, claudetool.FromTools(tools))
package claudeexecutor
