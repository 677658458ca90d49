/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params extracts typed arguments from decoded tool call input and
// builds the error payloads returned to the model. It has no SDK dependencies
// so both the Claude and Gemini adapters share it.
package params
