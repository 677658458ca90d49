/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder_test

import (
	"strings"
	"testing"

	"chainguard.dev/ghagent/agents/promptbuilder"
	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		want    []string
		wantErr string
	}{{
		name: "no placeholders",
		tmpl: "Upload the logo.",
	}, {
		name: "repeated and spaced",
		tmpl: "Work on {{ repository }} at {{branch}}. Again: {{repository}}",
		want: []string{"branch", "repository"},
	}, {
		name:    "unclosed",
		tmpl:    "Hello {{name",
		wantErr: "unclosed",
	}, {
		name:    "bad name",
		tmpl:    "Hello {{1st}}",
		wantErr: "invalid placeholder",
	}, {
		name:    "empty name",
		tmpl:    "Hello {{}}",
		wantErr: "invalid placeholder",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := promptbuilder.Parse(tt.tmpl)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse() error = %v, wanted containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, p.Placeholders()); diff != "" {
				t.Errorf("Placeholders() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender(t *testing.T) {
	base := promptbuilder.MustParse("Repo: {{repo}}\nFiles:\n{{files}}\nMeta: {{meta}}\nRepo again: {{repo}}")

	p := base.
		MustBind("repo", promptbuilder.Text("octo/site")).
		MustBind("files", promptbuilder.YAML([]string{"logo.png", "README.md"})).
		MustBind("meta", promptbuilder.JSON(map[string]int{"n": 2}))

	got, err := p.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "Repo: octo/site\nFiles:\n- logo.png\n- README.md\nMeta: {\n  \"n\": 2\n}\nRepo again: octo/site"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}

	// Binding returned copies; the parsed template is untouched.
	if _, err := base.Render(); err == nil || !strings.Contains(err.Error(), "files, meta, repo") {
		t.Errorf("base.Render() error = %v, wanted the unbound names", err)
	}
}

func TestBindErrors(t *testing.T) {
	p := promptbuilder.MustParse("{{a}}")
	if _, err := p.Bind("b", promptbuilder.Text("x")); err == nil {
		t.Error("Bind(unknown) = nil error, wanted an error")
	}
	bound := p.MustBind("a", promptbuilder.Text("x"))
	if _, err := bound.Bind("a", promptbuilder.Text("y")); err == nil {
		t.Error("Bind(twice) = nil error, wanted an error")
	}
}

func TestRenderJSONError(t *testing.T) {
	p := promptbuilder.MustParse("{{v}}").MustBind("v", promptbuilder.JSON(make(chan int)))
	if _, err := p.Render(); err == nil {
		t.Error("Render() = nil error, wanted a marshalling error")
	}
}
