/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/executor/retry"
	"chainguard.dev/ghagent/agents/metrics"
	"chainguard.dev/ghagent/agents/promptbuilder"
	"chainguard.dev/ghagent/agents/result"
	"chainguard.dev/ghagent/agents/toolcall/googletool"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// DefaultModel is used unless WithModel says otherwise.
const DefaultModel = "gemini-2.0-flash"

// Interface runs one agent execution per request.
type Interface[Req promptbuilder.Bindable, Resp any] interface {
	Execute(ctx context.Context, request Req, tools map[string]googletool.Metadata[Resp]) (Resp, error)
}

type executor[Req promptbuilder.Bindable, Resp any] struct {
	client          *genai.Client
	prompt          *promptbuilder.Prompt
	system          *promptbuilder.Prompt
	model           string
	temperature     float32
	maxOutputTokens int32
	thinking        *int32
	maxTurns        int
	submit          *googletool.Metadata[Resp]
	metrics         *metrics.Agent
	retry           retry.Policy
}

// New returns an executor that renders requests into prompt.
func New[Req promptbuilder.Bindable, Resp any](client *genai.Client, prompt *promptbuilder.Prompt, opts ...Option[Req, Resp]) (Interface[Req, Resp], error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}
	e := &executor[Req, Resp]{
		client:          client,
		prompt:          prompt,
		model:           DefaultModel,
		temperature:     0.1,
		maxOutputTokens: 8192,
		maxTurns:        50,
		metrics:         metrics.New(context.Background()),
		retry:           retry.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return e, nil
}

func (e *executor[Req, Resp]) config(tools map[string]googletool.Metadata[Resp]) (*genai.GenerateContentConfig, []string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(e.temperature),
		MaxOutputTokens: e.maxOutputTokens,
	}
	names := slices.Sorted(maps.Keys(tools))
	if len(names) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(names))
		for _, name := range names {
			decls = append(decls, tools[name].Definition)
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if e.system != nil {
		system, err := e.system.Render()
		if err != nil {
			return nil, nil, fmt.Errorf("rendering system instructions: %w", err)
		}
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if e.thinking != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true, ThinkingBudget: e.thinking}
	}
	return cfg, names, nil
}

// Execute implements Interface.
func (e *executor[Req, Resp]) Execute(ctx context.Context, request Req, tools map[string]googletool.Metadata[Resp]) (response Resp, err error) {
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
		merged := make(map[string]googletool.Metadata[Resp], len(tools)+1)
		maps.Copy(merged, tools)
		if _, ok := merged[e.submit.Definition.Name]; !ok {
			merged[e.submit.Definition.Name] = *e.submit
		}
		tools = merged
	}
	cfg, names, err := e.config(tools)
	if err != nil {
		return response, err
	}

	log := clog.FromContext(ctx).With("model", e.model)
	log.With("prompt_length", len(prompt), "tools", len(tools)).Info("Starting Gemini execution")

	chat, err := e.client.Chats.Create(ctx, e.model, cfg, nil)
	if err != nil {
		return response, fmt.Errorf("creating chat with %s: %w", e.model, err)
	}

	execCtx := agenttrace.GetExecutionContext(ctx)
	var final Resp
	next := []*genai.Part{genai.NewPartFromText(prompt)}
	for turn := 1; turn <= e.maxTurns; turn++ {
		execCtx.Turn = turn
		turnCtx := agenttrace.WithExecutionContext(ctx, execCtx)

		parts := next
		resp, err := retry.Do(turnCtx, e.retry, "chat.send", isRetryable, func() (*genai.GenerateContentResponse, error) {
			return chat.Send(turnCtx, parts...)
		})
		if err != nil {
			return response, fmt.Errorf("calling Gemini: %w", err)
		}
		if u := resp.UsageMetadata; u != nil {
			e.metrics.Tokens(turnCtx, e.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
			trace.RecordTokenUsage(e.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
		}

		if len(resp.Candidates) == 0 {
			return response, errors.New("Gemini returned no candidates")
		}
		candidate := resp.Candidates[0]
		if candidate.FinishReason == genai.FinishReasonMalformedFunctionCall {
			log.With("finish_message", candidate.FinishMessage).Warn("Malformed function call, asking the model to retry")
			next = []*genai.Part{genai.NewPartFromText(fmt.Sprintf(
				"The function call was malformed. Try again using one of the available functions: %s", strings.Join(names, ", ")))}
			continue
		}
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return response, fmt.Errorf("Gemini returned an empty candidate (finish reason %q)", candidate.FinishReason)
		}

		var (
			text  string
			calls []*genai.FunctionCall
		)
		for _, part := range candidate.Content.Parts {
			switch {
			case part.Thought:
				trace.RecordReasoning(part.Text)
			case part.FunctionCall != nil:
				calls = append(calls, part.FunctionCall)
			case part.Text != "":
				text += part.Text
			}
		}

		if len(calls) == 0 {
			if text == "" {
				return response, errors.New("Gemini returned neither text nor function calls")
			}
			out, err := result.Extract[Resp](text)
			if err != nil {
				log.With("response", text, "error", err).Error("Failed to parse Gemini response")
				return response, fmt.Errorf("parsing response: %w", err)
			}
			return out, nil
		}

		next = make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			e.metrics.ToolCall(turnCtx, e.model, call.Name)
			fr := e.runTool(turnCtx, call, tools, trace, &final)
			if isSet(final) {
				log.With("tool", call.Name, "turn", turn).Info("Tool set the final result")
				return final, nil
			}
			next = append(next, &genai.Part{FunctionResponse: fr})
		}
	}
	return response, fmt.Errorf("no result after %d turns", e.maxTurns)
}

func (e *executor[Req, Resp]) runTool(ctx context.Context, call *genai.FunctionCall, tools map[string]googletool.Metadata[Resp], trace *agenttrace.Trace[Resp], final *Resp) *genai.FunctionResponse {
	clog.FromContext(ctx).With("tool", call.Name, "id", call.ID).Info("Executing tool call")
	if meta, ok := tools[call.Name]; ok {
		return meta.Handler(ctx, call, trace, final)
	}
	err := fmt.Errorf("unknown function: %q", call.Name)
	trace.BadToolCall(call.ID, call.Name, call.Args, err)
	return googletool.Error(call, "%v", err)
}

// isSet reports whether v differs from the zero value of T.
func isSet[T any](v T) bool {
	return !reflect.ValueOf(&v).Elem().IsZero()
}
