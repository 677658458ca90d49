/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package googleexecutor runs a tool-using conversation with a Gemini model
// through the genai SDK, against either the Gemini API or Vertex AI.
//
// Function calls are answered until a tool sets the response (normally
// submit_result) or the model replies with JSON text. A malformed function
// call is not fatal: the model is asked to try again with the declared
// functions.
package googleexecutor
