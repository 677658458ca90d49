/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolkit

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ghagent/agents/toolcall/callbacks"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

// CreatePullRequest opens a pull request from the active branch into the base branch.
func (s *Session) CreatePullRequest(ctx context.Context, title, body string) (callbacks.PullRequest, error) {
	head := s.ActiveBranch()
	if head == s.base {
		return callbacks.PullRequest{}, fmt.Errorf("%w: %s", ErrSameBranch, s.base)
	}

	pr, _, err := s.client.PullRequests.Create(ctx, s.owner, s.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
		Head:  github.Ptr(head),
		Base:  github.Ptr(s.base),
	})
	if err != nil {
		return callbacks.PullRequest{}, fmt.Errorf("creating pull request from %s: %w", head, err)
	}
	clog.FromContext(ctx).Infof("Created PR #%d: %s", pr.GetNumber(), pr.GetHTMLURL())
	return callbacks.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Head:   head,
		Base:   s.base,
	}, nil
}

// openPullRequestsQuery pages through open pull requests, newest first.
type openPullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			Nodes []struct {
				Number      int
				Title       string
				URL         string `graphql:"url"`
				HeadRefName string
				BaseRefName string
			}
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
		} `graphql:"pullRequests(states: [OPEN], first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

// ListOpenPullRequests returns every open pull request in the repository.
func (s *Session) ListOpenPullRequests(ctx context.Context) ([]callbacks.PullRequest, error) {
	if s.gql == nil {
		return nil, errors.New("toolkit: no GraphQL client configured")
	}
	vars := map[string]any{
		"owner":  githubv4.String(s.owner),
		"repo":   githubv4.String(s.repo),
		"cursor": (*githubv4.String)(nil),
	}

	var out []callbacks.PullRequest
	for {
		var q openPullRequestsQuery
		if err := s.gql.Query(ctx, &q, vars); err != nil {
			return nil, fmt.Errorf("querying open pull requests: %w", err)
		}
		for _, n := range q.Repository.PullRequests.Nodes {
			out = append(out, callbacks.PullRequest{
				Number: n.Number,
				Title:  n.Title,
				URL:    n.URL,
				Head:   n.HeadRefName,
				Base:   n.BaseRefName,
			})
		}
		if !q.Repository.PullRequests.PageInfo.HasNextPage {
			return out, nil
		}
		vars["cursor"] = githubv4.NewString(q.Repository.PullRequests.PageInfo.EndCursor)
	}
}
