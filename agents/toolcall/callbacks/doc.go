/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package callbacks holds the function types the agent tools call into.

Nothing here imports a model SDK or a GitHub client, so the packages that
implement the callbacks (repos/toolkit, repos/images) stay independent of
how tools are presented to a model.

	cb := callbacks.RepositoryCallbacks{
		ReadFile: func(ctx context.Context, path string) (string, error) {
			// fetch path from the active branch
		},
		// ...
	}

A nil field disables the corresponding tool.
*/
package callbacks
