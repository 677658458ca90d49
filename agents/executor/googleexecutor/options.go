/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/ghagent/agents/executor/retry"
	"chainguard.dev/ghagent/agents/metrics"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/toolcall/googletool"
)

// Option configures an executor.
type Option[Req promptbuilder.Bindable, Resp any] func(*executor[Req, Resp]) error

// WithModel selects a gemini-* model.
func WithModel[Req promptbuilder.Bindable, Resp any](model string) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q is not a Gemini model (expected gemini-*)", model)
		}
		e.model = model
		return nil
	}
}

// WithTemperature sets sampling temperature in [0, 2].
func WithTemperature[Req promptbuilder.Bindable, Resp any](temp float32) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if temp < 0 || temp > 2 {
			return fmt.Errorf("temperature must be between 0 and 2, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithMaxOutputTokens bounds each response.
func WithMaxOutputTokens[Req promptbuilder.Bindable, Resp any](tokens int32) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if tokens <= 0 || tokens > 65536 {
			return fmt.Errorf("max output tokens must be in (0, 65536], got %d", tokens)
		}
		e.maxOutputTokens = tokens
		return nil
	}
}

// WithSystemInstructions sets the system instruction.
func WithSystemInstructions[Req promptbuilder.Bindable, Resp any](prompt *promptbuilder.Prompt) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		if prompt == nil {
			return errors.New("system instructions cannot be nil")
		}
		e.system = prompt
		return nil
	}
}

// WithThinking sets the thinking budget; -1 lets the model decide.
// Apply it after WithMaxOutputTokens.
func WithThinking[Req promptbuilder.Bindable, Resp any](budget int32) Option[Req, Resp] {
	return func(e *executor[Req, Resp]) error {
		switch {
		case budget == -1:
		case budget <= 0:
			return fmt.Errorf("thinking budget must be positive or -1, got %d", budget)
		case budget >= e.maxOutputTokens:
			// Thoughts count against the output limit.
			return fmt.Errorf("thinking budget (%d) must be less than max output tokens (%d)", budget, e.maxOutputTokens)
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
func WithSubmitResult[Req promptbuilder.Bindable, Resp any](provider func() (googletool.Metadata[Resp], error)) Option[Req, Resp] {
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
