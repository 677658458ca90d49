/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googletool adapts tools to Gemini function calling.
//
// FromTool converts a toolcall.Tool into Metadata holding a
// genai.FunctionDeclaration and a handler that answers genai.FunctionCall
// values with a genai.FunctionResponse. Param, OptionalParam and Error help
// handlers that are written against the SDK directly, such as submit_result.
package googletool
