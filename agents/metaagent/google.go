/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"

	"chainguard.dev/ghagent/agents/executor/googleexecutor"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/submitresult"
	"chainguard.dev/ghagent/agents/toolcall/googletool"
	"google.golang.org/genai"
)

type googleAgent[Req promptbuilder.Bindable, Resp, CB any] struct {
	executor googleexecutor.Interface[Req, Resp]
	config   Config[Resp, CB]
}

func googleClientConfig(provider Provider) *genai.ClientConfig {
	cfg := &genai.ClientConfig{
		APIKey:      provider.GoogleAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: provider.BaseURL},
	}
	if provider.GoogleAPIKey == "" {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = provider.ProjectID
		cfg.Location = provider.Region
	}
	return cfg
}

func newGoogleAgent[Req promptbuilder.Bindable, Resp, CB any](ctx context.Context, provider Provider, model string, config Config[Resp, CB]) (Agent[Req, Resp, CB], error) {
	client, err := genai.NewClient(ctx, googleClientConfig(provider))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	opts := []googleexecutor.Option[Req, Resp]{
		googleexecutor.WithModel[Req, Resp](model),
		googleexecutor.WithTemperature[Req, Resp](0.2),
		googleexecutor.WithMaxOutputTokens[Req, Resp](32768),
		googleexecutor.WithSubmitResult[Req](submitresult.GoogleTool[Resp]),
	}
	if config.SystemInstructions != nil {
		opts = append(opts, googleexecutor.WithSystemInstructions[Req, Resp](config.SystemInstructions))
	}
	if config.MaxTurns > 0 {
		opts = append(opts, googleexecutor.WithMaxTurns[Req, Resp](config.MaxTurns))
	}
	if config.Retry != nil {
		opts = append(opts, googleexecutor.WithRetryPolicy[Req, Resp](*config.Retry))
	}

	executor, err := googleexecutor.New(client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini executor: %w", err)
	}
	return &googleAgent[Req, Resp, CB]{executor: executor, config: config}, nil
}

func (a *googleAgent[Req, Resp, CB]) Execute(ctx context.Context, request Req, callbacks CB) (Resp, error) {
	set, err := tools(a.config.Tools, callbacks)
	if err != nil {
		var zero Resp
		return zero, err
	}
	return a.executor.Execute(ctx, request, googletool.FromTools(set))
}
