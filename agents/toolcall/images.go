/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall/callbacks"
	"github.com/chainguard-dev/clog"
)

// ImageTools adds image callbacks to a base callback set.
type ImageTools[T any] struct {
	base T
	callbacks.ImageCallbacks
}

// NewImageTools wraps base with cb.
func NewImageTools[T any](base T, cb callbacks.ImageCallbacks) ImageTools[T] {
	return ImageTools[T]{base: base, ImageCallbacks: cb}
}

type imageToolsProvider[Resp, T any] struct {
	base ToolProvider[Resp, T]
}

var _ ToolProvider[any, ImageTools[any]] = imageToolsProvider[any, any]{}

// NewImageToolsProvider adds load_image and push_image_to_github to base
// when the matching callbacks are set.
func NewImageToolsProvider[Resp, T any](base ToolProvider[Resp, T]) ToolProvider[Resp, ImageTools[T]] {
	return imageToolsProvider[Resp, T]{base: base}
}

func (p imageToolsProvider[Resp, T]) Tools(cb ImageTools[T]) map[string]Tool[Resp] {
	tools := p.base.Tools(cb.base)
	if cb.LoadImage != nil {
		tools[ToolLoadImage] = loadImageTool[Resp](cb.LoadImage)
	}
	if cb.PushImage != nil {
		tools[ToolPushImage] = pushImageTool[Resp](cb.PushImage)
	}
	return tools
}

func loadImageTool[Resp any](load func(context.Context, string) (callbacks.ImageInfo, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolLoadImage,
			Description: "Inspect a local image file and report its format, dimensions and size.",
			Parameters: []Parameter{
				{Name: "path", Type: "string", Description: "Local path of the image.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path})
			info, err := load(ctx, path)
			if err != nil {
				resp := map[string]any{"error": "Error loading image: " + err.Error(), "path": path}
				tc.Complete(resp, err)
				return resp
			}
			resp := map[string]any{
				"path":   info.Path,
				"format": info.Format,
				"width":  info.Width,
				"height": info.Height,
				"bytes":  info.Bytes,
				"size":   info.Size,
			}
			tc.Complete(resp, nil)
			return resp
		},
	}
}

func pushImageTool[Resp any](push func(context.Context, string) (string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolPushImage,
			Description: "Upload a local image to the configured GitHub repository and branch. The file is stored at the repository root under its base name, replacing any existing file with that name.",
			Parameters: []Parameter{
				{Name: "path", Type: "string", Description: "Local path of the image to upload.", Required: true},
				{Name: "reasoning", Type: "string", Description: "Why this image is being uploaded.", Required: false},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			if reasoning, _ := OptionalParam(call, "reasoning", ""); reasoning != "" {
				clog.FromContext(ctx).With("tool", call.Name, "reasoning", reasoning).Info("Tool call reasoning")
			}

			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path})
			msg, err := push(ctx, path)
			resp := map[string]any{"result": msg}
			tc.Complete(resp, err)
			return resp
		},
	}
}
