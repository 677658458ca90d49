/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolkit

import "chainguard.dev/ghagent/agents/toolcall/callbacks"

// Callbacks exposes every Session operation to the repository tools.
func (s *Session) Callbacks() callbacks.RepositoryCallbacks {
	return callbacks.RepositoryCallbacks{
		ReadFile:             s.ReadFile,
		ListDirectory:        s.ListDirectory,
		CreateFile:           s.CreateFile,
		UpdateFile:           s.UpdateFile,
		DeleteFile:           s.DeleteFile,
		BaseBranchOverview:   s.BaseBranchOverview,
		ListBranches:         s.ListBranches,
		SetActiveBranch:      s.SetActiveBranch,
		CreateBranch:         s.CreateBranch,
		CreatePullRequest:    s.CreatePullRequest,
		ListOpenPullRequests: s.ListOpenPullRequests,
	}
}
