/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"

	"chainguard.dev/ghagent/agents/executor/claudeexecutor"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/submitresult"
	"chainguard.dev/ghagent/agents/toolcall/claudetool"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type claudeAgent[Req promptbuilder.Bindable, Resp, CB any] struct {
	executor claudeexecutor.Interface[Req, Resp]
	config   Config[Resp, CB]
}

func claudeClientOptions(ctx context.Context, provider Provider) ([]option.RequestOption, error) {
	var opts []option.RequestOption
	if provider.AnthropicAPIKey != "" {
		opts = append(opts, option.WithAPIKey(provider.AnthropicAPIKey))
	} else {
		if provider.Region == "" || provider.ProjectID == "" {
			return nil, fmt.Errorf("claude on Vertex AI needs a project and region (got %q, %q)", provider.ProjectID, provider.Region)
		}
		// vertex.WithGoogleAuth panics without credentials.
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("finding default credentials: %w", err)
		}
		opts = append(opts, vertex.WithCredentials(ctx, provider.Region, provider.ProjectID, creds))
	}
	if provider.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(provider.BaseURL))
	}
	return opts, nil
}

func newClaudeAgent[Req promptbuilder.Bindable, Resp, CB any](ctx context.Context, provider Provider, model string, config Config[Resp, CB]) (Agent[Req, Resp, CB], error) {
	clientOpts, err := claudeClientOptions(ctx, provider)
	if err != nil {
		return nil, err
	}
	client := anthropic.NewClient(clientOpts...)

	opts := []claudeexecutor.Option[Req, Resp]{
		claudeexecutor.WithModel[Req, Resp](model),
		claudeexecutor.WithTemperature[Req, Resp](0.2),
		claudeexecutor.WithMaxTokens[Req, Resp](32000),
		claudeexecutor.WithSubmitResult[Req](submitresult.ClaudeTool[Resp]),
	}
	if config.SystemInstructions != nil {
		opts = append(opts, claudeexecutor.WithSystemInstructions[Req, Resp](config.SystemInstructions))
	}
	if config.MaxTurns > 0 {
		opts = append(opts, claudeexecutor.WithMaxTurns[Req, Resp](config.MaxTurns))
	}
	if config.Retry != nil {
		opts = append(opts, claudeexecutor.WithRetryPolicy[Req, Resp](*config.Retry))
	}

	executor, err := claudeexecutor.New(client, config.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Claude executor: %w", err)
	}
	return &claudeAgent[Req, Resp, CB]{executor: executor, config: config}, nil
}

func (a *claudeAgent[Req, Resp, CB]) Execute(ctx context.Context, request Req, callbacks CB) (Resp, error) {
	set, err := tools(a.config.Tools, callbacks)
	if err != nil {
		var zero Resp
		return zero, err
	}
	return a.executor.Execute(ctx, request, claudetool.FromTools(set))
}
