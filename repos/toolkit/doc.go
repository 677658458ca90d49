/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolkit exposes a single GitHub repository to an agent.
//
// A Session is bound to one repository. Reads and writes act on the active
// branch, which starts out as the base branch and moves when the agent
// creates or selects another branch. Writes to the base branch are refused:
// the agent is expected to branch, commit and open a pull request.
//
//	clients, err := creds.ForRepository(ctx, "octo/site")
//	if err != nil { ... }
//	sess, err := toolkit.New(ctx, clients, "")
//	if err != nil { ... }
//	cb := sess.Callbacks()
//
// The returned callbacks plug into toolcall.NewRepositoryTools.
package toolkit
