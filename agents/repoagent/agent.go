/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package repoagent

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"chainguard.dev/ghagent/agents/metaagent"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/toolcall"
	"chainguard.dev/ghagent/agents/toolcall/callbacks"
)

// Task is one instruction for the agent.
type Task struct {
	Instruction string `json:"instruction" yaml:"instruction"`
	Repository  string `json:"repository" yaml:"repository"`
	BaseBranch  string `json:"base_branch" yaml:"base_branch"`

	// UploadBranch is where push_image_to_github commits.
	UploadBranch string `json:"upload_branch,omitempty" yaml:"upload_branch,omitempty"`
}

// Bind implements promptbuilder.Bindable.
func (t *Task) Bind(prompt *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	if t.Instruction == "" {
		return nil, errors.New("task has no instruction")
	}
	return prompt.Bind("task", promptbuilder.YAML(t))
}

// TaskResult is what the agent submits when it is done.
type TaskResult struct {
	Summary        string   `json:"summary" jsonschema:"required,description=What was done and anything left undone"`
	PullRequestURL string   `json:"pull_request_url,omitempty" jsonschema:"description=URL of the pull request opened for this task"`
	FilesChanged   []string `json:"files_changed,omitempty" jsonschema:"description=Repository paths the task changed"`
}

// Callbacks is the callback set the agent's tools are built from.
type Callbacks = toolcall.ImageTools[toolcall.RepositoryTools[toolcall.EmptyTools]]

// NewCallbacks composes repository and image callbacks.
func NewCallbacks(repo callbacks.RepositoryCallbacks, images callbacks.ImageCallbacks) Callbacks {
	return toolcall.NewImageTools(toolcall.NewRepositoryTools(toolcall.EmptyTools{}, repo), images)
}

// Tools returns the provider for every tool the agent can use.
func Tools() toolcall.ToolProvider[*TaskResult, Callbacks] {
	return toolcall.NewImageToolsProvider[*TaskResult](
		toolcall.NewRepositoryToolsProvider[*TaskResult](
			toolcall.NewEmptyToolsProvider[*TaskResult]()))
}

// Agent runs tasks.
type Agent = metaagent.Agent[*Task, *TaskResult, Callbacks]

// Options tune an Agent beyond the model choice.
type Options struct {
	MaxTurns int
	// Tools restricts the agent to these tool names; empty allows all.
	Tools []string
}

// New returns an Agent on model.
func New(ctx context.Context, provider metaagent.Provider, model string, opts Options) (Agent, error) {
	var tools toolcall.ToolProvider[*TaskResult, Callbacks] = Tools()
	if len(opts.Tools) > 0 {
		for _, name := range opts.Tools {
			if !toolcall.Known(name) {
				return nil, fmt.Errorf("unknown tool %q", name)
			}
		}
		tools = selected{base: tools, allow: opts.Tools}
	}
	return metaagent.New[*Task](ctx, provider, model, metaagent.Config[*TaskResult, Callbacks]{
		SystemInstructions: systemInstructions,
		UserPrompt:         userPrompt,
		Tools:              tools,
		MaxTurns:           opts.MaxTurns,
	})
}

// selected narrows a provider to an allow list of known tool names.
type selected struct {
	base  toolcall.ToolProvider[*TaskResult, Callbacks]
	allow []string
}

func (s selected) Tools(cb Callbacks) map[string]toolcall.Tool[*TaskResult] {
	all := s.base.Tools(cb)
	// Tools whose callbacks are unset are absent from all.
	allow := slices.DeleteFunc(slices.Clone(s.allow), func(name string) bool {
		_, ok := all[name]
		return !ok
	})
	if len(allow) == 0 {
		return map[string]toolcall.Tool[*TaskResult]{}
	}
	tools, _ := toolcall.Select(all, allow...)
	return tools
}
