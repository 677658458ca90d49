/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result decodes the JSON a model returns as plain text, for the
// turns where it answers without calling submit_result.
package result

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when the text holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in response")

// JSON returns the JSON document inside text. A fenced ```json block wins,
// then any fenced block, then the outermost {...} span.
func JSON(text string) (string, error) {
	if body, ok := fenced(text, "```json"); ok {
		return body, nil
	}
	if body, ok := fenced(text, "```"); ok {
		return body, nil
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func fenced(text, open string) (string, bool) {
	_, rest, ok := strings.Cut(text, open)
	if !ok {
		return "", false
	}
	body, _, ok := strings.Cut(rest, "```")
	if !ok {
		return "", false
	}
	body = strings.TrimSpace(body)
	return body, body != ""
}

// Extract decodes the JSON inside text into a T.
func Extract[T any](text string) (T, error) {
	var out T
	body, err := JSON(text)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal([]byte(body), &out)
	return out, err
}
