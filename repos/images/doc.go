/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package images inspects local image files and exposes them, together with
// the GitHub upload, as agent callbacks.
package images
