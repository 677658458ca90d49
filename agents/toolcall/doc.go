/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall defines the tools an agent can call, independent of the
// model provider.
//
// Tools are assembled by stacking providers, each adding the tools backed by
// one set of callbacks:
//
//	provider := toolcall.NewImageToolsProvider[Result](
//		toolcall.NewRepositoryToolsProvider[Result](
//			toolcall.NewEmptyToolsProvider[Result]()))
//
//	tools := provider.Tools(toolcall.NewImageTools(
//		toolcall.NewRepositoryTools(toolcall.EmptyTools{}, repoCallbacks),
//		imageCallbacks))
//
// Tool names are fixed at compile time (see the Tool* constants) and always
// satisfy ValidName. The claudetool and googletool packages convert the
// resulting map into SDK specific metadata.
package toolcall
