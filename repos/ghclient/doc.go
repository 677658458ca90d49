/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ghclient builds authenticated GitHub REST and GraphQL clients.
//
// Credentials are either a personal access token or a GitHub App, in which
// case an installation token is minted for the target repository.
package ghclient
