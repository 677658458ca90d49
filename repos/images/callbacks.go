/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package images

import (
	"context"

	"chainguard.dev/ghagent/agents/toolcall/callbacks"
	"chainguard.dev/ghagent/repos/fileupsert"
)

// Callbacks wires Load and uploader into the image tools. A nil uploader
// leaves push_image_to_github out.
func Callbacks(uploader *fileupsert.Uploader) callbacks.ImageCallbacks {
	cb := callbacks.ImageCallbacks{LoadImage: Load}
	if uploader != nil {
		cb.PushImage = func(ctx context.Context, path string) (string, error) {
			res := uploader.Upsert(ctx, fileupsert.Request{LocalPath: path})
			return res.String(), res.Err()
		}
	}
	return cb
}
