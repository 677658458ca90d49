/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/ghagent/agents/executor/retry"
	"chainguard.dev/ghagent/agents/metrics"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/toolcall/claudetool"
)

// Option configures an executor.
type Option[Req promptbuilder.Bindable, Resp any] func(*executor[Req, Resp]) error

// WithModel selects a claude-* model.
func WithModel[Req promptbuilder.Bindable, Resp any](model string) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q is not a Claude model (expected claude-*)", model)
		}
		e.model = model
		return nil
	}
}

// WithMaxTokens bounds each response.
func WithMaxTokens[Req promptbuilder.Bindable, Resp any](tokens int64) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if tokens <= 0 || tokens > 32000 {
			return fmt.Errorf("max tokens must be in (0, 32000], got %d", tokens)
		}
		e.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets sampling temperature in [0, 1].
func WithTemperature[Req promptbuilder.Bindable, Resp any](temp float64) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if temp < 0 || temp > 1 {
			return fmt.Errorf("temperature must be between 0 and 1, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithSystemInstructions sets the system prompt. It must not have placeholders left.
func WithSystemInstructions[Req promptbuilder.Bindable, Resp any](prompt *promptbuilder.Prompt) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if prompt == nil {
			return errors.New("system instructions cannot be nil")
		}
		e.system = prompt
		return nil
	}
}

// WithThinking enables extended thinking. Apply it after WithMaxTokens.
func WithThinking[Req promptbuilder.Bindable, Resp any](budget int64) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if budget < 1024 {
			return fmt.Errorf("thinking budget must be at least 1024, got %d", budget)
		}
		if budget >= e.maxTokens {
			return fmt.Errorf("thinking budget (%d) must be less than max tokens (%d)", budget, e.maxTokens)
		}
		e.thinking = &budget
		return nil
	}
}

// WithMaxTurns bounds the number of model calls per execution.
func WithMaxTurns[Req promptbuilder.Bindable, Resp any](turns int) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if turns <= 0 {
			return fmt.Errorf("max turns must be positive, got %d", turns)
		}
		e.maxTurns = turns
		return nil
	}
}

// WithSubmitResult adds the tool built by provider to every execution.
func WithSubmitResult[Req promptbuilder.Bindable, Resp any](provider func() (claudetool.Metadata[Resp], error)) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if provider == nil {
			return errors.New("submit_result provider cannot be nil")
		}
		tool, err := provider()
		if err != nil {
			return fmt.Errorf("building submit_result: %w", err)
		}
		e.submit = &tool
		return nil
	}
}

// WithRetryPolicy replaces retry.Default for transient API errors.
func WithRetryPolicy[Req promptbuilder.Bindable, Resp any](p retry.Policy) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if err := p.Validate(); err != nil {
			return err
		}
		e.retry = p
		return nil
	}
}

// WithEnricher replaces the metric attribute enricher.
func WithEnricher[Req promptbuilder.Bindable, Resp any](enrich metrics.Enricher) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		e.metrics.SetEnricher(enrich)
		return nil
	}
}
