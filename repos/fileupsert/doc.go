/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package fileupsert publishes a local file into a GitHub repository, creating
it when absent and replacing it when present.

The remote path is the base name of the local file, so "a/b/image.png" is
stored as "image.png" at the repository root. Every outcome, success or
failure, is reported as a Result whose String form is the message handed
back to the agent:

	u := fileupsert.New(fileupsert.Config{
		Token:      os.Getenv("GITHUB_TOKEN"),
		Repository: "owner/site",
	})
	res := u.Upsert(ctx, fileupsert.Request{LocalPath: "./logo.png"})
	fmt.Println(res) // Created image at https://github.com/owner/site/blob/dev/logo.png

An invocation makes at most one mutating call and none on any failure path.
There is no retry, no rollback and no locking: two concurrent uploads of the
same name may race, and the loser sees a GitHub conflict error.
*/
package fileupsert
