/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// isRetryable reports quota exhaustion and transient server errors. Vertex
// sometimes surfaces them only in the message, so that is checked too.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	msg := err.Error()
	for _, s := range []string{"RESOURCE_EXHAUSTED", "Resource exhausted", "quota exceeded", "rate limit", "Overloaded"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
