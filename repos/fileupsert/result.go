/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package fileupsert

import (
	"errors"
	"fmt"
)

// Action is the mutation an upsert performed.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

var (
	// ErrFileNotFound means the local path does not exist.
	ErrFileNotFound = errors.New("local file not found")
	// ErrNoToken means no GitHub credential was supplied.
	ErrNoToken = errors.New("GitHub token not found")
)

// Result is the outcome of Upsert.
type Result struct {
	// Action is empty when nothing was written.
	Action Action
	// URL is the html_url of the written file version.
	URL string
	// Reason is the failure message shown to the caller.
	Reason string

	err error
}

// OK reports whether the file was written.
func (r Result) OK() bool {
	return r.Action != ""
}

// Err returns the underlying failure, or nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return errors.New(r.Reason)
}

// String is the single textual outcome of the upsert.
func (r Result) String() string {
	switch r.Action {
	case ActionCreated:
		return "Created image at " + r.URL
	case ActionUpdated:
		return "Updated image at " + r.URL
	default:
		return r.Reason
	}
}

func notFound(path string) Result {
	return Result{Reason: "Error: File not found at " + path, err: fmt.Errorf("%w: %s", ErrFileNotFound, path)}
}

func noToken() Result {
	return Result{Reason: "Error: GitHub token not found. Set GITHUB_TOKEN environment variable.", err: ErrNoToken}
}

func uploadFailed(err error) Result {
	return Result{Reason: "Error uploading image: " + err.Error(), err: err}
}
