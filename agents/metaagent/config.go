/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"chainguard.dev/ghagent/agents/executor/retry"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/toolcall"
)

// Provider holds the credentials for the model backends. An API key selects
// the public API of its family; without one the agent goes through Vertex AI
// using ProjectID and Region.
type Provider struct {
	GoogleAPIKey    string
	AnthropicAPIKey string
	ProjectID       string
	Region          string

	// BaseURL overrides the model API endpoint.
	BaseURL string
}

// Config defines one agent.
type Config[Resp, CB any] struct {
	// SystemInstructions is optional.
	SystemInstructions *promptbuilder.Prompt

	// UserPrompt is bound with each request.
	UserPrompt *promptbuilder.Prompt

	// Tools builds the tool set from the callbacks passed to Execute.
	Tools toolcall.ToolProvider[Resp, CB]

	// MaxTurns bounds the tool loop; zero keeps the executor default.
	MaxTurns int

	// Retry overrides the executor retry policy when set.
	Retry *retry.Policy
}
