/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// SplitRepository splits "owner/name". Anything else is an error.
func SplitRepository(repository string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", repository)
	}
	return owner, name, nil
}

// New returns a REST client authenticated by ts.
func New(ctx context.Context, ts oauth2.TokenSource, apiURL string) (*github.Client, error) {
	return withAPIURL(github.NewClient(oauth2.NewClient(ctx, ts)), apiURL)
}

// ForToken returns a REST client authenticated with a static token.
func ForToken(ctx context.Context, token, apiURL string) (*github.Client, error) {
	return New(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), apiURL)
}

// NewGraphQL returns a GraphQL v4 client authenticated by ts.
func NewGraphQL(ctx context.Context, ts oauth2.TokenSource, apiURL string) *githubv4.Client {
	httpClient := oauth2.NewClient(ctx, ts)
	if apiURL == "" {
		return githubv4.NewClient(httpClient)
	}
	return githubv4.NewEnterpriseClient(strings.TrimSuffix(apiURL, "/")+"/graphql", httpClient)
}

func withAPIURL(client *github.Client, apiURL string) (*github.Client, error) {
	if apiURL == "" {
		return client, nil
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API URL %q: %w", apiURL, err)
	}
	client.BaseURL = u
	return client, nil
}

// Clients bundles the REST and GraphQL clients for one repository.
type Clients struct {
	Owner   string
	Repo    string
	REST    *github.Client
	GraphQL *githubv4.Client
}

// ForRepository resolves creds for repository ("owner/name") and builds both clients.
func (c Credentials) ForRepository(ctx context.Context, repository string) (*Clients, error) {
	owner, repo, err := SplitRepository(repository)
	if err != nil {
		return nil, err
	}
	ts, err := c.TokenSource(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	rest, err := New(ctx, ts, c.APIURL)
	if err != nil {
		return nil, err
	}
	return &Clients{
		Owner:   owner,
		Repo:    repo,
		REST:    rest,
		GraphQL: NewGraphQL(ctx, ts, c.APIURL),
	}, nil
}
