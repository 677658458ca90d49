/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package fileupsert

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"chainguard.dev/ghagent/repos/ghclient"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

const (
	// DefaultBranch is used when neither the request nor the config names a branch.
	DefaultBranch = "dev"
	// DefaultCommitMessage is used when neither the request nor the config names a message.
	DefaultCommitMessage = "Upload image"
)

// Config holds the credential and the defaults applied to every request.
type Config struct {
	Token         string
	Repository    string // "owner/name"
	Branch        string
	CommitMessage string

	// TreatLookupErrorsAsAbsent makes any failure to read the existing file
	// fall through to a create, instead of only a 404.
	TreatLookupErrorsAsAbsent bool
}

// Request is a single upload. Empty fields fall back to the Config.
type Request struct {
	LocalPath     string
	Repository    string
	Branch        string
	CommitMessage string
}

// ClientFactory opens a GitHub client for token.
type ClientFactory func(ctx context.Context, token string) (*github.Client, error)

// TokenSource resolves a token for repository when an upload needs one. An
// empty token with a nil error means no credentials are configured.
type TokenSource func(ctx context.Context, repository string) (string, error)

// Uploader performs upserts with a fixed Config.
type Uploader struct {
	cfg       Config
	newClient ClientFactory
	tokens    TokenSource
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithClientFactory replaces how clients are opened.
func WithClientFactory(f ClientFactory) Option {
	return func(u *Uploader) { u.newClient = f }
}

// WithTokenSource resolves the token per upload when Config.Token is empty.
// It is only called once the local file has been found.
func WithTokenSource(ts TokenSource) Option {
	return func(u *Uploader) { u.tokens = ts }
}

// WithAPIURL points the default client at another GitHub API endpoint.
func WithAPIURL(apiURL string) Option {
	return WithClientFactory(func(ctx context.Context, token string) (*github.Client, error) {
		return ghclient.ForToken(ctx, token, apiURL)
	})
}

// New returns an Uploader for cfg.
func New(cfg Config, opts ...Option) *Uploader {
	u := &Uploader{cfg: cfg}
	WithAPIURL("")(u)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Uploader) resolve(req Request) Request {
	if req.Repository == "" {
		req.Repository = u.cfg.Repository
	}
	if req.Branch == "" {
		req.Branch = cmp.Or(u.cfg.Branch, DefaultBranch)
	}
	if req.CommitMessage == "" {
		req.CommitMessage = cmp.Or(u.cfg.CommitMessage, DefaultCommitMessage)
	}
	return req
}

// Upsert writes the file at req.LocalPath to the repository root on the
// target branch. It never panics and never returns a Go error: every failure
// is described by the Result.
func (u *Uploader) Upsert(ctx context.Context, req Request) Result {
	req = u.resolve(req)
	log := clog.FromContext(ctx).With("path", req.LocalPath, "repository", req.Repository, "branch", req.Branch)

	if _, err := os.Stat(req.LocalPath); err != nil {
		log.Warn("Local file not found")
		return record(notFound(req.LocalPath), outcomeFileNotFound)
	}
	token, err := u.token(ctx, req.Repository)
	if err != nil {
		log.With("error", err).Error("Resolving GitHub token failed")
		return record(uploadFailed(err), outcomeError)
	}
	if token == "" {
		log.Warn("No GitHub token configured")
		return record(noToken(), outcomeNoToken)
	}

	res, err := u.upsert(ctx, req, token)
	if err != nil {
		log.With("error", err).Error("Upload failed")
		return record(uploadFailed(err), outcomeError)
	}
	log.With("action", res.Action, "url", res.URL).Info("Uploaded file")
	return record(res, outcomeSuccess)
}

func (u *Uploader) token(ctx context.Context, repository string) (string, error) {
	if u.cfg.Token != "" || u.tokens == nil {
		return u.cfg.Token, nil
	}
	return u.tokens(ctx, repository)
}

func (u *Uploader) upsert(ctx context.Context, req Request, token string) (Result, error) {
	owner, name, err := ghclient.SplitRepository(req.Repository)
	if err != nil {
		return Result{}, err
	}
	client, err := u.newClient(ctx, token)
	if err != nil {
		return Result{}, err
	}
	if _, _, err := client.Repositories.Get(ctx, owner, name); err != nil {
		return Result{}, err
	}

	content, err := os.ReadFile(req.LocalPath)
	if err != nil {
		return Result{}, err
	}
	remotePath := filepath.Base(req.LocalPath)

	sha, err := u.existingSHA(ctx, client, owner, name, remotePath, req.Branch)
	if err != nil {
		return Result{}, err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(req.CommitMessage),
		Content: content,
		Branch:  github.Ptr(req.Branch),
	}
	if sha == "" {
		resp, _, err := client.Repositories.CreateFile(ctx, owner, name, remotePath, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Action: ActionCreated, URL: resp.GetContent().GetHTMLURL()}, nil
	}

	opts.SHA = github.Ptr(sha)
	resp, _, err := client.Repositories.UpdateFile(ctx, owner, name, remotePath, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{Action: ActionUpdated, URL: resp.GetContent().GetHTMLURL()}, nil
}

// existingSHA returns the blob SHA of path on branch, or "" when it does not exist.
func (u *Uploader) existingSHA(ctx context.Context, client *github.Client, owner, name, path, branch string) (string, error) {
	file, dir, resp, err := client.Repositories.GetContents(ctx, owner, name, path, &github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil && file != nil:
		return file.GetSHA(), nil
	case err == nil && dir != nil:
		return "", fmt.Errorf("%s is a directory in %s/%s@%s", path, owner, name, branch)
	case err == nil:
		return "", nil
	case isNotFound(resp, err):
		return "", nil
	case u.cfg.TreatLookupErrorsAsAbsent:
		clog.FromContext(ctx).With("error", err).Warn("Treating failed lookup as absent file")
		return "", nil
	default:
		return "", fmt.Errorf("looking up %s: %w", path, err)
	}
}

func isNotFound(resp *github.Response, err error) bool {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
