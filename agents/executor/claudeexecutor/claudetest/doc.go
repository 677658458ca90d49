/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudetest fakes the streaming Anthropic Messages API for tests.
//
// Replies are written as the server-sent event sequence the API produces
// (message_start, content_block_start/delta/stop, message_delta,
// message_stop), so they can be consumed by Messages.NewStreaming and
// folded back into a message with Message.Accumulate.
//
// # Usage
//
//	srv := httptest.NewServer(&claudetest.Server{Replies: []any{
//	    claudetest.Message("tool_use", claudetest.ToolUse("t1", "read_file", map[string]any{"path": "README.md"})),
//	    http.StatusServiceUnavailable,
//	}})
//	client := anthropic.NewClient(option.WithBaseURL(srv.URL), option.WithAPIKey("test"))
package claudetest
