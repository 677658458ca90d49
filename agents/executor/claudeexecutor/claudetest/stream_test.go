/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chainguard.dev/ghagent/agents/executor/claudeexecutor/claudetest"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"
)

func stream(t *testing.T, s *claudetest.Server) (anthropic.Message, error) {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	client := anthropic.NewClient(option.WithBaseURL(srv.URL), option.WithAPIKey("test"), option.WithMaxRetries(0))

	st := client.Messages.NewStreaming(context.Background(), anthropic.MessageNewParams{
		Model:     claudetest.Model,
		MaxTokens: 32000,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock("hi"))},
	})
	defer st.Close()
	var msg anthropic.Message
	for st.Next() {
		if err := msg.Accumulate(st.Current()); err != nil {
			return msg, err
		}
	}
	return msg, st.Err()
}

func TestWriteAccumulates(t *testing.T) {
	s := &claudetest.Server{Replies: []any{
		claudetest.Message("tool_use",
			claudetest.Text("Looking "),
			claudetest.ToolUse("t1", "read_file", map[string]any{"path": "README.md"}),
		),
	}}
	msg, err := stream(t, s)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}

	if msg.StopReason != anthropic.StopReasonToolUse {
		t.Errorf("StopReason = %q, wanted = %q", msg.StopReason, anthropic.StopReasonToolUse)
	}
	if msg.Usage.InputTokens != 12 || msg.Usage.OutputTokens != 4 {
		t.Errorf("Usage = %d/%d, wanted = 12/4", msg.Usage.InputTokens, msg.Usage.OutputTokens)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("Content = %d blocks, wanted = 2", len(msg.Content))
	}
	if got := msg.Content[0].Text; got != "Looking " {
		t.Errorf("text = %q, wanted = %q", got, "Looking ")
	}
	use := msg.Content[1]
	if use.ID != "t1" || use.Name != "read_file" {
		t.Errorf("tool_use = %s/%s, wanted = t1/read_file", use.ID, use.Name)
	}
	if diff := cmp.Diff(`{"path":"README.md"}`, string(use.Input)); diff != "" {
		t.Errorf("Input (-want +got):\n%s", diff)
	}

	if stream, _ := s.Requests[0]["stream"].(bool); !stream {
		t.Errorf("stream = %v, wanted = true", s.Requests[0]["stream"])
	}
}

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		replies []any
		status  int
	}{
		{"queued status", []any{http.StatusServiceUnavailable}, http.StatusServiceUnavailable},
		{"exhausted", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stream(t, &claudetest.Server{Replies: tt.replies})
			var apiErr *anthropic.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("stream error = %v, wanted an *anthropic.Error", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, wanted = %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}
