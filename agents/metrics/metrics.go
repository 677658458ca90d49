/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records model token usage and tool calls as OpenTelemetry counters.
package metrics

import (
	"context"

	"chainguard.dev/ghagent/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is shared by every executor; the model is a dimension.
const MeterName = "chainguard.dev/ghagent/agents"

// Enricher adds contextual attributes to the base (model, tool) attributes.
type Enricher func(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue

// ExecutionContextEnricher labels metrics with the agenttrace.ExecutionContext on ctx.
func ExecutionContextEnricher(ctx context.Context, base []attribute.KeyValue) []attribute.KeyValue {
	return agenttrace.GetExecutionContext(ctx).EnrichAttributes(base)
}

// Agent holds the counters for one executor.
type Agent struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	enrich           Enricher
}

// New creates the counters on the global meter provider. A counter that
// cannot be created is replaced by a no-op and logged.
func New(ctx context.Context) *Agent {
	meter := otel.Meter(MeterName)
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			clog.FromContext(ctx).With("counter", name, "error", err).Warn("Disabling metric")
			return noop.Int64Counter{}
		}
		return c
	}
	return &Agent{
		promptTokens:     counter("genai.token.prompt", "Prompt tokens sent to the model", "{tokens}"),
		completionTokens: counter("genai.token.completion", "Completion tokens returned by the model", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "Tool calls requested by the model", "{calls}"),
		enrich:           ExecutionContextEnricher,
	}
}

// SetEnricher replaces the default ExecutionContextEnricher. nil disables enrichment.
func (a *Agent) SetEnricher(e Enricher) { a.enrich = e }

func (a *Agent) attrs(ctx context.Context, base ...attribute.KeyValue) metric.MeasurementOption {
	if a.enrich != nil {
		base = a.enrich(ctx, base)
	}
	return metric.WithAttributes(base...)
}

// Tokens records the usage reported for one model response.
func (a *Agent) Tokens(ctx context.Context, model string, prompt, completion int64) {
	opt := a.attrs(ctx, attribute.String("model", model))
	a.promptTokens.Add(ctx, prompt, opt)
	a.completionTokens.Add(ctx, completion, opt)
}

// ToolCall records one tool invocation.
func (a *Agent) ToolCall(ctx context.Context, model, tool string) {
	a.toolCalls.Add(ctx, 1, a.attrs(ctx, attribute.String("model", model), attribute.String("tool", tool)))
}
