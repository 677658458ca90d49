/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext describes the repository task an agent execution belongs to.
type ExecutionContext struct {
	// Repository is the "owner/name" the agent operates on.
	Repository string `json:"repository,omitempty"`
	// Branch is the branch the agent was asked to work against.
	Branch string `json:"branch,omitempty"`
	// Task identifies the instruction being executed (for example its index in a task file).
	Task string `json:"task,omitempty"`
	// Turn is the conversation turn for multi-turn executions.
	Turn int `json:"turn,omitempty"`
}

// SpanAttributes returns the attributes attached to the execution span.
// Every populated field is included since span cardinality is not a concern.
func (e ExecutionContext) SpanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	if e.Branch != "" {
		attrs = append(attrs, attribute.String("branch", e.Branch))
	}
	if e.Task != "" {
		attrs = append(attrs, attribute.String("task", e.Task))
	}
	if e.Turn > 0 {
		attrs = append(attrs, attribute.Int("turn", e.Turn))
	}
	return attrs
}

// EnrichAttributes appends the bounded execution labels to base for use on metrics.
// Task and branch are left out: they grow without bound across runs.
func (e ExecutionContext) EnrichAttributes(base []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(base), len(base)+2)
	copy(attrs, base)
	if e.Repository != "" {
		attrs = append(attrs, attribute.String("repository", e.Repository))
	}
	return append(attrs, attribute.Int("turn", e.Turn))
}

type executionContextKey struct{}

// WithExecutionContext attaches execCtx to ctx.
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, execCtx)
}

// GetExecutionContext returns the ExecutionContext attached to ctx, or the zero value.
func GetExecutionContext(ctx context.Context) ExecutionContext {
	execCtx, _ := ctx.Value(executionContextKey{}).(ExecutionContext)
	return execCtx
}
