/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"

	"chainguard.dev/ghagent/repos/fileupsert"
)

// upload runs one upsert and prints its outcome. A failed upload is also
// returned as an error so the exit status reflects it.
func upload(ctx context.Context, cfg *config, path string, w io.Writer) error {
	res := cfg.uploader("").Upsert(ctx, fileupsert.Request{LocalPath: path})
	fmt.Fprintln(w, res.String())
	return res.Err()
}
