/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetest

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"sync"
)

// Model is the model name reported by replies built with Message.
const Model = "claude-sonnet-4@20250514"

// Server replies to /v1/messages with the queued replies in order and keeps
// every request body it saw. A reply is either a message built with Message,
// which is streamed, or an int, which is sent as an error with that status.
type Server struct {
	mu       sync.Mutex
	Replies  []any
	Requests []map[string]any
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.Requests = append(s.Requests, req)

	if len(s.Replies) == 0 {
		WriteError(w, http.StatusBadRequest, "invalid_request_error", "no more replies")
		return
	}
	reply := s.Replies[0]
	s.Replies = s.Replies[1:]
	switch reply := reply.(type) {
	case int:
		WriteError(w, reply, "overloaded_error", "Overloaded")
	case map[string]any:
		Write(w, reply)
	default:
		WriteError(w, http.StatusInternalServerError, "api_error", fmt.Sprintf("unsupported reply %T", reply))
	}
}

// Message builds an assistant message with the given stop reason and blocks.
func Message(stopReason string, blocks ...map[string]any) map[string]any {
	return map[string]any{
		"id":          "msg",
		"type":        "message",
		"role":        "assistant",
		"model":       Model,
		"content":     blocks,
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 4},
	}
}

// Text builds a text content block.
func Text(text string) map[string]any {
	return map[string]any{"type": "text", "text": text}
}

// ToolUse builds a tool_use content block.
func ToolUse(id, name string, input map[string]any) map[string]any {
	return map[string]any{"type": "tool_use", "id": id, "name": name, "input": input}
}

// WriteError writes an Anthropic error body with the given status.
func WriteError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": message},
	})
}

// Write streams msg as server-sent events. Text and tool input are sent as
// deltas the way the API does, other blocks are sent whole.
func Write(w http.ResponseWriter, msg map[string]any) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	usage, _ := msg["usage"].(map[string]any)
	start := maps.Clone(msg)
	start["content"] = []any{}
	start["stop_reason"] = nil
	start["usage"] = map[string]any{"input_tokens": usage["input_tokens"], "output_tokens": 0}
	event(w, "message_start", map[string]any{"type": "message_start", "message": start})

	blocks, _ := msg["content"].([]map[string]any)
	for i, block := range blocks {
		head, delta := block, map[string]any(nil)
		switch block["type"] {
		case "text":
			head = map[string]any{"type": "text", "text": ""}
			delta = map[string]any{"type": "text_delta", "text": block["text"]}
		case "tool_use":
			input, _ := json.Marshal(block["input"])
			head = map[string]any{"type": "tool_use", "id": block["id"], "name": block["name"], "input": map[string]any{}}
			delta = map[string]any{"type": "input_json_delta", "partial_json": string(input)}
		}
		event(w, "content_block_start", map[string]any{"type": "content_block_start", "index": i, "content_block": head})
		if delta != nil {
			event(w, "content_block_delta", map[string]any{"type": "content_block_delta", "index": i, "delta": delta})
		}
		event(w, "content_block_stop", map[string]any{"type": "content_block_stop", "index": i})
	}

	event(w, "message_delta", map[string]any{
		"type":  "message_delta",
		"delta": map[string]any{"stop_reason": msg["stop_reason"], "stop_sequence": nil},
		"usage": map[string]any{"output_tokens": usage["output_tokens"]},
	})
	event(w, "message_stop", map[string]any{"type": "message_stop"})
}

func event(w http.ResponseWriter, name string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
