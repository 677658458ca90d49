/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chainguard.dev/ghagent/agents/agenttrace"

// Reasoning is a block of model thinking captured during the execution.
type Reasoning struct {
	Thinking string `json:"thinking"`
}

// ToolCall is one tool invocation inside a Trace.
type ToolCall[T any] struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Result    any            `json:"result"`
	Error     error          `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`

	mu    sync.Mutex
	trace *Trace[T]
	span  oteltrace.Span
}

// Trace is a single agent execution, from prompt to submitted result.
type Trace[T any] struct {
	ID          string           `json:"id"`
	InputPrompt string           `json:"input_prompt"`
	ExecContext ExecutionContext `json:"exec_context,omitempty"`
	ToolCalls   []*ToolCall[T]   `json:"tool_calls"`
	Reasoning   []Reasoning      `json:"reasoning,omitempty"`
	Result      T                `json:"result"`
	Error       error            `json:"error,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`

	mu     sync.Mutex
	tracer Tracer[T]
	ctx    context.Context
	span   oteltrace.Span
}

func tracer() oteltrace.Tracer {
	return otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
}

func newTrace[T any](ctx context.Context, t Tracer[T], prompt string) *Trace[T] {
	execCtx := GetExecutionContext(ctx)
	attrs := append([]attribute.KeyValue{attribute.String("agent.prompt", prompt)}, execCtx.SpanAttributes()...)
	ctx, span := tracer().Start(ctx, "agent.execution", oteltrace.WithAttributes(attrs...))

	return &Trace[T]{
		ID:          newTraceID(),
		InputPrompt: prompt,
		ExecContext: execCtx,
		ToolCalls:   []*ToolCall[T]{},
		StartTime:   time.Now(),
		tracer:      t,
		ctx:         ctx,
		span:        span,
	}
}

// StartToolCall opens a tool call. It joins the trace once Complete is called.
func (t *Trace[T]) StartToolCall(id, name string, params map[string]any) *ToolCall[T] {
	_, span := tracer().Start(t.ctx, "agent.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))
	return &ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		StartTime: time.Now(),
		trace:     t,
		span:      span,
	}
}

// BadToolCall records a call the handler never ran, such as an unknown tool or
// arguments that failed validation.
func (t *Trace[T]) BadToolCall(id, name string, params map[string]any, err error) {
	_, span := tracer().Start(t.ctx, "agent.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ToolCalls = append(t.ToolCalls, &ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		Error:     err,
		StartTime: now,
		EndTime:   now,
		trace:     t,
	})
}

// RecordReasoning appends a thinking block reported by the model.
func (t *Trace[T]) RecordReasoning(thinking string) {
	if thinking == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Reasoning = append(t.Reasoning, Reasoning{Thinking: thinking})
}

// RecordTokenUsage puts the model and token counts on the execution span.
func (t *Trace[T]) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", inputTokens),
		attribute.Int64("tokens.output", outputTokens),
		attribute.Int64("tokens.total", inputTokens+outputTokens),
	)
}

// Complete finishes the tool call and appends it to its trace.
func (tc *ToolCall[T]) Complete(result any, err error) {
	tc.mu.Lock()
	tc.Result, tc.Error, tc.EndTime = result, err, time.Now()
	span, parent := tc.span, tc.trace
	tc.mu.Unlock()

	endSpan(span, err)

	parent.mu.Lock()
	defer parent.mu.Unlock()
	parent.ToolCalls = append(parent.ToolCalls, tc)
}

// Duration is the elapsed time of the call, measured up to now while it is open.
func (tc *ToolCall[T]) Duration() time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return elapsed(tc.StartTime, tc.EndTime)
}

// Complete finishes the trace and hands it to the tracer that created it.
func (t *Trace[T]) Complete(result T, err error) {
	t.mu.Lock()
	t.Result, t.Error, t.EndTime = result, err, time.Now()
	span, rec := t.span, t.tracer
	t.mu.Unlock()

	endSpan(span, err)
	if rec != nil {
		rec.RecordTrace(t)
	}
}

// Duration is the elapsed time of the execution.
func (t *Trace[T]) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return elapsed(t.StartTime, t.EndTime)
}

// String renders the trace for logs, one line per tool call. Long values
// are truncated.
func (t *Trace[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "trace %s (%v)\n", t.ID, elapsed(t.StartTime, t.EndTime).Round(time.Millisecond))
	if ec := t.ExecContext; ec.Repository != "" {
		fmt.Fprintf(&sb, "Repository: %s@%s\n", ec.Repository, ec.Branch)
	}
	fmt.Fprintf(&sb, "Prompt: %s\n", truncate(t.InputPrompt, 300))
	for _, r := range t.Reasoning {
		fmt.Fprintf(&sb, "Thinking: %s\n", truncate(r.Thinking, 200))
	}
	for _, tc := range t.ToolCalls {
		fmt.Fprintf(&sb, "-> %s(%s)", tc.Name, formatParams(tc.Params))
		if tc.Error != nil {
			fmt.Fprintf(&sb, " Error: %v\n", tc.Error)
		} else {
			fmt.Fprintf(&sb, " = %s\n", truncate(fmt.Sprint(tc.Result), 200))
		}
	}
	if t.Error != nil {
		fmt.Fprintf(&sb, "Error: %v\n", t.Error)
	} else {
		fmt.Fprintf(&sb, "Result: %s\n", truncate(fmt.Sprintf("%+v", t.Result), 500))
	}
	return sb.String()
}

func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, truncate(fmt.Sprint(params[k]), 80))
	}
	return strings.Join(parts, ", ")
}

func endSpan(span oteltrace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func elapsed(start, end time.Time) time.Duration {
	if end.IsZero() {
		return time.Since(start)
	}
	return end.Sub(start)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// newTraceID returns an identifier of the form YYYYMMDD-HHMMSS-xxxxxxxx.
func newTraceID() string {
	now := time.Now()
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return now.Format("20060102-150405.000000")
	}
	return now.Format("20060102-150405") + "-" + hex.EncodeToString(b)
}
