/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package callbacks

import "context"

// ImageInfo describes a local image file.
type ImageInfo struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
	Size   string `json:"size"`
}

// ImageCallbacks inspect local images and publish them to GitHub.
type ImageCallbacks struct {
	LoadImage func(ctx context.Context, path string) (ImageInfo, error)

	// PushImage uploads the file at path and returns the outcome message.
	// The message is always meaningful to the model; err is set when the
	// upload did not happen.
	PushImage func(ctx context.Context, path string) (message string, err error)
}
