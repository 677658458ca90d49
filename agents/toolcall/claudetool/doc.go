/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package claudetool adapts tools to the Anthropic Messages API.

FromTool turns a provider-independent toolcall.Tool into Metadata holding an
anthropic.ToolParam and a handler that decodes anthropic.ToolUseBlock input:

	tools := claudetool.FromTools(provider.Tools(cb))
	resp, err := executor.Execute(ctx, request, tools)

Handlers written directly against the SDK can use NewParams and Param:

	p, errResp := claudetool.NewParams(toolUse)
	if errResp != nil {
		return errResp
	}
	path, errResp := claudetool.Param[string](p, "path")
*/
package claudetool
