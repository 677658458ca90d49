/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

// Agent runs one request against a set of callbacks.
type Agent[Req promptbuilder.Bindable, Resp, CB any] interface {
	Execute(ctx context.Context, request Req, callbacks CB) (Resp, error)
}

// New returns an agent for model. gemini-* models run on Gemini and
// claude-* models run on Claude; anything else is an error.
func New[Req promptbuilder.Bindable, Resp, CB any](ctx context.Context, provider Provider, model string, config Config[Resp, CB]) (Agent[Req, Resp, CB], error) {
	if config.UserPrompt == nil {
		return nil, errors.New("user prompt is required")
	}
	if config.Tools == nil {
		return nil, errors.New("tool provider is required")
	}

	log := clog.FromContext(ctx).With("model", model)
	switch lower := strings.ToLower(model); {
	case strings.HasPrefix(lower, "gemini-"):
		log.Info("Using Gemini executor")
		return newGoogleAgent[Req](ctx, provider, model, config)
	case strings.HasPrefix(lower, "claude-"):
		log.Info("Using Claude executor")
		return newClaudeAgent[Req](ctx, provider, model, config)
	default:
		return nil, fmt.Errorf("unsupported model: %q (expected gemini-* or claude-*)", model)
	}
}

// tools builds the tool set for one execution and checks every name.
func tools[Resp, CB any](provider toolcall.ToolProvider[Resp, CB], cb CB) (map[string]toolcall.Tool[Resp], error) {
	set := provider.Tools(cb)
	if err := toolcall.Validate(set); err != nil {
		return nil, fmt.Errorf("invalid tool set: %w", err)
	}
	return set, nil
}
