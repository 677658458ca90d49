/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned when neither a token nor a GitHub App is configured.
var ErrNoCredentials = errors.New("no GitHub credentials configured")

// Credentials selects how requests are authenticated. Token wins when both
// a token and an App are configured.
type Credentials struct {
	Token string

	AppID          int64
	PrivateKey     []byte
	PrivateKeyPath string

	// APIURL overrides https://api.github.com/ (GitHub Enterprise or tests).
	APIURL string
}

// HasApp reports whether GitHub App credentials are present.
func (c Credentials) HasApp() bool {
	return c.AppID != 0 && (len(c.PrivateKey) > 0 || c.PrivateKeyPath != "")
}

func (c Credentials) privateKey() ([]byte, error) {
	if len(c.PrivateKey) > 0 {
		return c.PrivateKey, nil
	}
	key, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading GitHub App private key: %w", err)
	}
	return key, nil
}

// TokenSource returns a token source authorized for owner/repo.
func (c Credentials) TokenSource(ctx context.Context, owner, repo string) (oauth2.TokenSource, error) {
	switch {
	case c.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token}), nil
	case c.HasApp():
		return c.installationTokenSource(ctx, owner, repo)
	default:
		return nil, ErrNoCredentials
	}
}

func (c Credentials) installationTokenSource(ctx context.Context, owner, repo string) (oauth2.TokenSource, error) {
	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}
	atr, err := ghinstallation.NewAppsTransport(http.DefaultTransport, c.AppID, key)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if c.APIURL != "" {
		atr.BaseURL = strings.TrimSuffix(c.APIURL, "/")
	}

	appClient, err := withAPIURL(github.NewClient(&http.Client{Transport: atr}), c.APIURL)
	if err != nil {
		return nil, err
	}
	inst, _, err := appClient.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("finding installation of app %d on %s/%s: %w", c.AppID, owner, repo, err)
	}
	clog.FromContext(ctx).With("app_id", c.AppID, "installation_id", inst.GetID()).Info("Using GitHub App installation")

	return &installationTokenSource{ctx: ctx, tr: ghinstallation.NewFromAppsTransport(atr, inst.GetID())}, nil
}

// installationTokenSource adapts a ghinstallation transport, which caches
// and refreshes the installation token, to oauth2.
type installationTokenSource struct {
	ctx context.Context
	tr  *ghinstallation.Transport
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.tr.Token(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("minting installation token: %w", err)
	}
	expiry, _, err := s.tr.Expiry()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, Expiry: expiry}, nil
}

// ResolveToken resolves the credentials for owner/repo to a bare token string, for
// callers that take a token rather than a client.
func (c Credentials) ResolveToken(ctx context.Context, owner, repo string) (string, error) {
	ts, err := c.TokenSource(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	tok, err := ts.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
