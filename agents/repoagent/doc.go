/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package repoagent defines the agent that carries out plain-language tasks
// against one GitHub repository: reading and editing files through the API,
// managing branches and pull requests, and publishing local images.
//
// Tools are composed Empty, then Repository, then Image, and every task
// finishes by submitting a TaskResult.
package repoagent
