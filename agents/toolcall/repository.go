/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/toolcall/callbacks"
	"chainguard.dev/ghagent/agents/toolcall/params"
	"github.com/chainguard-dev/clog"
)

// RepositoryTools adds repository callbacks to a base callback set.
type RepositoryTools[T any] struct {
	base T
	callbacks.RepositoryCallbacks
}

// NewRepositoryTools wraps base with cb.
func NewRepositoryTools[T any](base T, cb callbacks.RepositoryCallbacks) RepositoryTools[T] {
	return RepositoryTools[T]{base: base, RepositoryCallbacks: cb}
}

type repositoryToolsProvider[Resp, T any] struct {
	base ToolProvider[Resp, T]
}

var _ ToolProvider[any, RepositoryTools[any]] = repositoryToolsProvider[any, any]{}

// NewRepositoryToolsProvider adds the GitHub repository tools to base.
// Only tools whose callback is set are added.
func NewRepositoryToolsProvider[Resp, T any](base ToolProvider[Resp, T]) ToolProvider[Resp, RepositoryTools[T]] {
	return repositoryToolsProvider[Resp, T]{base: base}
}

func (p repositoryToolsProvider[Resp, T]) Tools(cb RepositoryTools[T]) map[string]Tool[Resp] {
	tools := p.base.Tools(cb.base)
	add := func(t Tool[Resp], enabled bool) {
		if enabled {
			tools[t.Def.Name] = t
		}
	}

	add(readFileTool[Resp](cb.ReadFile), cb.ReadFile != nil)
	add(listDirectoryTool[Resp](cb.ListDirectory), cb.ListDirectory != nil)
	add(createFileTool[Resp](cb.CreateFile), cb.CreateFile != nil)
	add(updateFileTool[Resp](cb.UpdateFile), cb.UpdateFile != nil)
	add(deleteFileTool[Resp](cb.DeleteFile), cb.DeleteFile != nil)
	add(baseBranchOverviewTool[Resp](cb.BaseBranchOverview), cb.BaseBranchOverview != nil)
	add(listBranchesTool[Resp](cb.ListBranches), cb.ListBranches != nil)
	add(setActiveBranchTool[Resp](cb.SetActiveBranch), cb.SetActiveBranch != nil)
	add(createBranchTool[Resp](cb.CreateBranch), cb.CreateBranch != nil)
	add(createPullRequestTool[Resp](cb.CreatePullRequest), cb.CreatePullRequest != nil)
	add(listOpenPullRequestsTool[Resp](cb.ListOpenPullRequests), cb.ListOpenPullRequests != nil)
	return tools
}

func reasoningParameter(what string) Parameter {
	return Parameter{Name: "reasoning", Type: "string", Description: "Explain why you are " + what + ".", Required: true}
}

// logReasoning consumes the reasoning argument every repository tool requires.
func logReasoning(ctx context.Context, call ToolCall, trace badCallRecorder) map[string]any {
	reasoning, errResp := Param[string](call, trace, "reasoning")
	if errResp != nil {
		return errResp
	}
	clog.FromContext(ctx).With("tool", call.Name, "reasoning", reasoning).Info("Tool call reasoning")
	return nil
}

// finish completes tc with either the error payload or result.
func finish[Resp any](ctx context.Context, tc *agenttrace.ToolCall[Resp], err error, ctxFields, result map[string]any) map[string]any {
	if err != nil {
		clog.FromContext(ctx).With("tool", tc.Name, "error", err).Warn("Tool call failed")
		resp := params.ErrorWithContext(err, ctxFields)
		tc.Complete(resp, err)
		return resp
	}
	tc.Complete(result, nil)
	return result
}

func readFileTool[Resp any](read func(context.Context, string) (string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolReadFile,
			Description: "Read the contents of a file from the active branch of the repository.",
			Parameters: []Parameter{
				reasoningParameter("reading this file"),
				{Name: "path", Type: "string", Description: "Path of the file relative to the repository root.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path})
			content, err := read(ctx, path)
			return finish(ctx, tc, err, map[string]any{"path": path}, map[string]any{
				"path":    path,
				"content": content,
				"size":    len(content),
			})
		},
	}
}

func listDirectoryTool[Resp any](list func(context.Context, string) ([]string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolListDirectory,
			Description: "Recursively list every file under a directory of the active branch.",
			Parameters: []Parameter{
				reasoningParameter("listing this directory"),
				{Name: "path", Type: "string", Description: "Directory relative to the repository root. Use an empty string for the root.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			dir, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": dir})
			files, err := list(ctx, dir)
			return finish(ctx, tc, err, map[string]any{"path": dir}, map[string]any{
				"path":  dir,
				"files": files,
				"count": len(files),
			})
		},
	}
}

func createFileTool[Resp any](create func(context.Context, string, string) error) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolCreateFile,
			Description: "Create a new file on the active branch. Fails if the file already exists; use update_file instead.",
			Parameters: []Parameter{
				reasoningParameter("creating this file"),
				{Name: "path", Type: "string", Description: "Path of the new file relative to the repository root.", Required: true},
				{Name: "content", Type: "string", Description: "Complete content of the new file.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			content, errResp := Param[string](call, trace, "content")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path, "size": len(content)})
			err := create(ctx, path, content)
			return finish(ctx, tc, err, map[string]any{"path": path}, map[string]any{
				"path":    path,
				"created": true,
			})
		},
	}
}

func updateFileTool[Resp any](update func(context.Context, string, string, string) error) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolUpdateFile,
			Description: "Replace a piece of text in a file on the active branch. old_content must appear in the file exactly as given.",
			Parameters: []Parameter{
				reasoningParameter("changing this file"),
				{Name: "path", Type: "string", Description: "Path of the file relative to the repository root.", Required: true},
				{Name: "old_content", Type: "string", Description: "Exact text to replace.", Required: true},
				{Name: "new_content", Type: "string", Description: "Replacement text.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			oldContent, errResp := Param[string](call, trace, "old_content")
			if errResp != nil {
				return errResp
			}
			newContent, errResp := Param[string](call, trace, "new_content")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path})
			err := update(ctx, path, oldContent, newContent)
			return finish(ctx, tc, err, map[string]any{"path": path}, map[string]any{
				"path":    path,
				"updated": true,
			})
		},
	}
}

func deleteFileTool[Resp any](del func(context.Context, string) error) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolDeleteFile,
			Description: "Delete a file from the active branch.",
			Parameters: []Parameter{
				reasoningParameter("deleting this file"),
				{Name: "path", Type: "string", Description: "Path of the file relative to the repository root.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			path, errResp := Param[string](call, trace, "path")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"path": path})
			err := del(ctx, path)
			return finish(ctx, tc, err, map[string]any{"path": path}, map[string]any{
				"path":    path,
				"deleted": true,
			})
		},
	}
}

func baseBranchOverviewTool[Resp any](overview func(context.Context) ([]string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolBaseBranchOverview,
			Description: "List every file path in the base branch of the repository.",
			Parameters:  []Parameter{reasoningParameter("looking at the repository layout")},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, nil)
			files, err := overview(ctx)
			return finish(ctx, tc, err, nil, map[string]any{
				"files": files,
				"count": len(files),
			})
		},
	}
}

func listBranchesTool[Resp any](list func(context.Context) ([]string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolListBranches,
			Description: "List the names of all branches in the repository.",
			Parameters:  []Parameter{reasoningParameter("listing branches")},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, nil)
			branches, err := list(ctx)
			return finish(ctx, tc, err, nil, map[string]any{"branches": branches})
		},
	}
}

func setActiveBranchTool[Resp any](set func(context.Context, string) error) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolSetActiveBranch,
			Description: "Make an existing branch the target of subsequent file operations.",
			Parameters: []Parameter{
				reasoningParameter("switching branches"),
				{Name: "branch", Type: "string", Description: "Name of an existing branch.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			branch, errResp := Param[string](call, trace, "branch")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"branch": branch})
			err := set(ctx, branch)
			return finish(ctx, tc, err, map[string]any{"branch": branch}, map[string]any{"active_branch": branch})
		},
	}
}

func createBranchTool[Resp any](create func(context.Context, string) (string, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolCreateBranch,
			Description: "Create a branch from the head of the base branch and make it the active branch. If the name is taken a numeric suffix is appended.",
			Parameters: []Parameter{
				reasoningParameter("creating a branch"),
				{Name: "branch", Type: "string", Description: "Desired branch name.", Required: true},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			branch, errResp := Param[string](call, trace, "branch")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"branch": branch})
			created, err := create(ctx, branch)
			return finish(ctx, tc, err, map[string]any{"branch": branch}, map[string]any{
				"requested":     branch,
				"active_branch": created,
			})
		},
	}
}

func createPullRequestTool[Resp any](create func(context.Context, string, string) (callbacks.PullRequest, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolCreatePullRequest,
			Description: "Open a pull request from the active branch into the base branch.",
			Parameters: []Parameter{
				reasoningParameter("opening a pull request"),
				{Name: "title", Type: "string", Description: "Pull request title.", Required: true},
				{Name: "body", Type: "string", Description: "Pull request description.", Required: false},
			},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			title, errResp := Param[string](call, trace, "title")
			if errResp != nil {
				return errResp
			}
			body, errResp := OptionalParam(call, "body", "")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, map[string]any{"title": title})
			pr, err := create(ctx, title, body)
			return finish(ctx, tc, err, map[string]any{"title": title}, map[string]any{
				"number": pr.Number,
				"url":    pr.URL,
				"head":   pr.Head,
				"base":   pr.Base,
			})
		},
	}
}

func listOpenPullRequestsTool[Resp any](list func(context.Context) ([]callbacks.PullRequest, error)) Tool[Resp] {
	return Tool[Resp]{
		Def: Definition{
			Name:        ToolListOpenPullRequests,
			Description: "List the open pull requests of the repository.",
			Parameters:  []Parameter{reasoningParameter("listing pull requests")},
		},
		Handler: func(ctx context.Context, call ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
			if errResp := logReasoning(ctx, call, trace); errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, nil)
			prs, err := list(ctx)
			return finish(ctx, tc, err, nil, map[string]any{
				"pull_requests": prs,
				"count":         len(prs),
			})
		},
	}
}
