/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

// ToolProvider builds the tools backed by the callbacks in CB.
// Providers wrap one another: Empty, then Repository, then Image.
type ToolProvider[Resp, CB any] interface {
	Tools(cb CB) map[string]Tool[Resp]
}

// EmptyTools is the callback set at the bottom of every stack.
type EmptyTools struct{}

type emptyToolsProvider[Resp any] struct{}

var _ ToolProvider[any, EmptyTools] = emptyToolsProvider[any]{}

// NewEmptyToolsProvider returns the provider every stack starts from.
func NewEmptyToolsProvider[Resp any]() ToolProvider[Resp, EmptyTools] {
	return emptyToolsProvider[Resp]{}
}

func (emptyToolsProvider[Resp]) Tools(EmptyTools) map[string]Tool[Resp] {
	return map[string]Tool[Resp]{}
}
