/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package callbacks

import "context"

// PullRequest summarizes a pull request for the model.
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Head   string `json:"head"`
	Base   string `json:"base"`
}

// RepositoryCallbacks operate on a single GitHub repository through the API.
// File operations act on the session's active branch.
type RepositoryCallbacks struct {
	ReadFile func(ctx context.Context, path string) (string, error)

	// ListDirectory returns every file path under dir, recursively.
	ListDirectory func(ctx context.Context, dir string) ([]string, error)

	CreateFile func(ctx context.Context, path, content string) error

	// UpdateFile replaces oldContent with newContent inside path.
	UpdateFile func(ctx context.Context, path, oldContent, newContent string) error

	DeleteFile func(ctx context.Context, path string) error

	// BaseBranchOverview lists every file path on the base branch.
	BaseBranchOverview func(ctx context.Context) ([]string, error)

	ListBranches func(ctx context.Context) ([]string, error)

	SetActiveBranch func(ctx context.Context, name string) error

	// CreateBranch creates a branch off the base branch and makes it active.
	// The returned name may carry a suffix when the requested one was taken.
	CreateBranch func(ctx context.Context, name string) (string, error)

	CreatePullRequest func(ctx context.Context, title, body string) (PullRequest, error)

	ListOpenPullRequests func(ctx context.Context) ([]PullRequest, error)
}
