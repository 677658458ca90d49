/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics_test

import (
	"context"
	"testing"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() = %v", err)
	}
	out := map[string]metricdata.Sum[int64]{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestAgentRecordsWithExecutionContext(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	original := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(original) })

	ctx := agenttrace.WithExecutionContext(context.Background(), agenttrace.ExecutionContext{
		Repository: "octo/site",
		Branch:     "dev",
		Turn:       2,
	})
	m := metrics.New(ctx)
	m.Tokens(ctx, "gemini-2.0-flash", 120, 30)
	m.ToolCall(ctx, "gemini-2.0-flash", "read_file")
	m.ToolCall(ctx, "gemini-2.0-flash", "read_file")

	sums := collect(t, reader)

	for name, want := range map[string]int64{
		"genai.token.prompt":     120,
		"genai.token.completion": 30,
		"genai.tool.calls":       2,
	} {
		sum, ok := sums[name]
		if !ok || len(sum.DataPoints) != 1 {
			t.Fatalf("%s: got %d data points, wanted = 1", name, len(sum.DataPoints))
		}
		dp := sum.DataPoints[0]
		if dp.Value != want {
			t.Errorf("%s = %d, wanted = %d", name, dp.Value, want)
		}
		if v, _ := dp.Attributes.Value(attribute.Key("repository")); v.AsString() != "octo/site" {
			t.Errorf("%s repository = %q, wanted = %q", name, v.AsString(), "octo/site")
		}
		if dp.Attributes.HasValue(attribute.Key("branch")) {
			t.Errorf("%s carries the unbounded branch label", name)
		}
	}

	dp := sums["genai.tool.calls"].DataPoints[0]
	if v, _ := dp.Attributes.Value(attribute.Key("tool")); v.AsString() != "read_file" {
		t.Errorf("tool = %q, wanted = %q", v.AsString(), "read_file")
	}
}

func TestAgentWithoutEnricher(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	original := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(original) })

	ctx := agenttrace.WithExecutionContext(context.Background(), agenttrace.ExecutionContext{Repository: "octo/site"})
	m := metrics.New(ctx)
	m.SetEnricher(nil)
	m.ToolCall(ctx, "claude-sonnet-4", "push_image_to_github")

	dp := collect(t, reader)["genai.tool.calls"].DataPoints[0]
	if got, wanted := dp.Attributes.Len(), 2; got != wanted {
		t.Errorf("attributes = %d, wanted = %d", got, wanted)
	}
}
