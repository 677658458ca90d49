/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/executor/retry"
	"chainguard.dev/ghagent/agents/metrics"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/result"
	"chainguard.dev/ghagent/agents/toolcall/claudetool"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// DefaultModel is used unless WithModel says otherwise.
const DefaultModel = "claude-sonnet-4@20250514"

// Interface runs one agent execution per request.
type Interface[Req promptbuilder.Bindable, Resp any] interface {
	Execute(ctx context.Context, request Req, tools map[string]claudetool.Metadata[Resp]) (Resp, error)
}

type executor[Req promptbuilder.Bindable, Resp any] struct {
	client      anthropic.Client
	prompt      *promptbuilder.Prompt
	system      *promptbuilder.Prompt
	model       string
	maxTokens   int64
	temperature float64
	thinking    *int64
	maxTurns    int
	submit      *claudetool.Metadata[Resp]
	metrics     *metrics.Agent
	retry       retry.Policy
}

// New returns an executor that renders requests into prompt.
func New[Req promptbuilder.Bindable, Resp any](client anthropic.Client, prompt *promptbuilder.Prompt, opts ...Option[Req, Resp]) (Interface[Req, Resp], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}
	e := &executor[Req, Resp]{
		client:      client,
		prompt:      prompt,
		model:       DefaultModel,
		maxTokens:   8192,
		temperature: 0.1,
		maxTurns:    50,
		metrics:     metrics.New(context.Background()),
		retry:       retry.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return e, nil
}

func (e *executor[Req, Resp]) params(prompt string, tools map[string]claudetool.Metadata[Resp]) (anthropic.MessageNewParams, error) {
	p := anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(e.temperature),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	}
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		def := tools[name].Definition
		p.Tools = append(p.Tools, anthropic.ToolUnionParam{OfTool: &def})
	}
	if e.system != nil {
		system, err := e.system.Render()
		if err != nil {
			return p, fmt.Errorf("rendering system instructions: %w", err)
		}
		p.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if e.thinking != nil {
		// Extended thinking requires a temperature of 1.
		p.Temperature = anthropic.Float(1)
		p.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{BudgetTokens: *e.thinking},
		}
	}
	return p, nil
}

// Execute implements Interface.
func (e *executor[Req, Resp]) Execute(ctx context.Context, request Req, tools map[string]claudetool.Metadata[Resp]) (response Resp, err error) {
	bound, err := request.Bind(e.prompt)
	if err != nil {
		return response, fmt.Errorf("binding request: %w", err)
	}
	prompt, err := bound.Render()
	if err != nil {
		return response, fmt.Errorf("rendering prompt: %w", err)
	}

	trace := agenttrace.StartTrace[Resp](ctx, prompt)
	defer func() { trace.Complete(response, err) }()

	if e.submit != nil {
		merged := make(map[string]claudetool.Metadata[Resp], len(tools)+1)
		maps.Copy(merged, tools)
		if _, ok := merged[e.submit.Definition.Name]; !ok {
			merged[e.submit.Definition.Name] = *e.submit
		}
		tools = merged
	}
	params, err := e.params(prompt, tools)
	if err != nil {
		return response, err
	}

	log := clog.FromContext(ctx).With("model", e.model)
	log.With("prompt_length", len(prompt), "tools", len(tools)).Info("Starting Claude execution")

	execCtx := agenttrace.GetExecutionContext(ctx)
	var final Resp
	for turn := 1; turn <= e.maxTurns; turn++ {
		execCtx.Turn = turn
		turnCtx := agenttrace.WithExecutionContext(ctx, execCtx)

		msg, err := retry.Do(turnCtx, e.retry, "messages.stream", isRetryable, func() (anthropic.Message, error) {
			stream := e.client.Messages.NewStreaming(turnCtx, params)
			defer stream.Close()
			var msg anthropic.Message
			for stream.Next() {
				if err := msg.Accumulate(stream.Current()); err != nil {
					return msg, fmt.Errorf("accumulating stream: %w", err)
				}
			}
			return msg, stream.Err()
		})
		if err != nil {
			return response, fmt.Errorf("calling Claude: %w", err)
		}
		if msg.Usage.InputTokens > 0 || msg.Usage.OutputTokens > 0 {
			e.metrics.Tokens(turnCtx, e.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
			trace.RecordTokenUsage(e.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
		}

		var (
			text  string
			calls []anthropic.ToolUseBlock
		)
		for _, block := range msg.Content {
			switch block.Type {
			case "text":
				text += block.Text
			case "tool_use":
				calls = append(calls, anthropic.ToolUseBlock{ID: block.ID, Name: block.Name, Input: block.Input})
			case "thinking", "redacted_thinking":
				trace.RecordReasoning(block.Thinking)
			}
		}

		if len(calls) == 0 {
			if text == "" {
				return response, errors.New("Claude returned neither text nor tool calls")
			}
			resp, err := result.Extract[Resp](text)
			if err != nil {
				log.With("response", text, "error", err).Error("Failed to parse Claude response")
				return response, fmt.Errorf("parsing response: %w", err)
			}
			return resp, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
		for _, call := range calls {
			e.metrics.ToolCall(turnCtx, e.model, call.Name)
			block, err := e.runTool(turnCtx, call, tools, trace, &final)
			if err != nil {
				return response, err
			}
			if isSet(final) {
				log.With("tool", call.Name, "turn", turn).Info("Tool set the final result")
				return final, nil
			}
			results = append(results, block)
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(results...))
	}
	return response, fmt.Errorf("no result after %d turns", e.maxTurns)
}

func (e *executor[Req, Resp]) runTool(ctx context.Context, call anthropic.ToolUseBlock, tools map[string]claudetool.Metadata[Resp], trace *agenttrace.Trace[Resp], final *Resp) (anthropic.ContentBlockParamUnion, error) {
	clog.FromContext(ctx).With("tool", call.Name, "id", call.ID).Info("Executing tool call")

	var out map[string]any
	if meta, ok := tools[call.Name]; ok {
		out = meta.Handler(ctx, call, trace, final)
	} else {
		err := fmt.Errorf("unknown tool: %q", call.Name)
		trace.BadToolCall(call.ID, call.Name, map[string]any{"input": string(call.Input)}, err)
		out = claudetool.Error("%v", err)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("marshalling %s result: %w", call.Name, err)
	}
	_, failed := out["error"]
	return anthropic.NewToolResultBlock(call.ID, string(b), failed), nil
}

// isSet reports whether v differs from the zero value of T.
func isSet[T any](v T) bool {
	return !reflect.ValueOf(&v).Elem().IsZero()
}
