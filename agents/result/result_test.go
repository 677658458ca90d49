/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result_test

import (
	"errors"
	"testing"

	"chainguard.dev/ghagent/agents/result"
)

type summary struct {
	Summary string `json:"summary"`
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{{
		name: "bare",
		text: `{"summary":"done"}`,
		want: "done",
	}, {
		name: "json fence with prose",
		text: "Here you go:\n```json\n{\"summary\": \"fenced\"}\n```\nThanks.",
		want: "fenced",
	}, {
		name: "plain fence",
		text: "```\n{\"summary\": \"plain\"}\n```",
		want: "plain",
	}, {
		name: "prose around object",
		text: "The result is {\"summary\": \"inline\"} as requested.",
		want: "inline",
	}, {
		name:    "no json",
		text:    "I could not finish.",
		wantErr: true,
	}, {
		name:    "malformed",
		text:    `{"summary": }`,
		wantErr: true,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := result.Extract[summary](tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Extract() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got.Summary != tt.want {
				t.Errorf("Extract() = %q, wanted = %q", got.Summary, tt.want)
			}
		})
	}
}

func TestJSONNoObject(t *testing.T) {
	if _, err := result.JSON("nothing } here {"); !errors.Is(err, result.ErrNoJSON) {
		t.Errorf("JSON() error = %v, wanted = %v", err, result.ErrNoJSON)
	}
}
