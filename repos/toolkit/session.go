/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"chainguard.dev/ghagent/repos/ghclient"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
)

var (
	// ErrProtectedBranch is returned for writes while the base branch is active.
	ErrProtectedBranch = errors.New("the base branch cannot be modified directly, create a branch first")
	// ErrBranchNotFound is returned when selecting a branch that does not exist.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrSameBranch is returned when opening a pull request from the base branch.
	ErrSameBranch = errors.New("the active branch is the base branch, create a branch first")
	// ErrFileExists is returned when creating a file that is already present.
	ErrFileExists = errors.New("file already exists")
	// ErrContentNotFound is returned when an update does not match the current file.
	ErrContentNotFound = errors.New("old content not found in file")
)

// maxBranchSuffix bounds the _vN suffixes tried by CreateBranch.
const maxBranchSuffix = 1000

// Session is an agent's view of one repository.
type Session struct {
	client *github.Client
	gql    *githubv4.Client
	owner  string
	repo   string
	base   string

	mu     sync.Mutex
	active string
}

// New binds a Session to the repository in clients. When baseBranch is
// empty the repository's default branch is used.
func New(ctx context.Context, clients *ghclient.Clients, baseBranch string) (*Session, error) {
	if clients == nil || clients.REST == nil {
		return nil, errors.New("toolkit: a REST client is required")
	}
	if baseBranch == "" {
		r, _, err := clients.REST.Repositories.Get(ctx, clients.Owner, clients.Repo)
		if err != nil {
			return nil, fmt.Errorf("getting repository %s/%s: %w", clients.Owner, clients.Repo, err)
		}
		baseBranch = r.GetDefaultBranch()
	}
	if baseBranch == "" {
		return nil, fmt.Errorf("repository %s/%s has no default branch", clients.Owner, clients.Repo)
	}
	clog.FromContext(ctx).With("repository", clients.Owner+"/"+clients.Repo, "base_branch", baseBranch).Info("Opened repository session")
	return &Session{
		client: clients.REST,
		gql:    clients.GraphQL,
		owner:  clients.Owner,
		repo:   clients.Repo,
		base:   baseBranch,
		active: baseBranch,
	}, nil
}

// BaseBranch is the branch pull requests target.
func (s *Session) BaseBranch() string { return s.base }

// ActiveBranch is the branch file operations act on.
func (s *Session) ActiveBranch() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) setActive(branch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = branch
}

// writable returns the active branch, or ErrProtectedBranch when it is the base.
func (s *Session) writable() (string, error) {
	branch := s.ActiveBranch()
	if branch == s.base {
		return "", fmt.Errorf("%w: %s", ErrProtectedBranch, s.base)
	}
	return branch, nil
}

func (s *Session) getFile(ctx context.Context, filePath, branch string) (*github.RepositoryContent, error) {
	file, dir, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, filePath, &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return nil, fmt.Errorf("reading %s on %s: %w", filePath, branch, err)
	}
	if file == nil {
		if dir != nil {
			return nil, fmt.Errorf("%s is a directory on %s", filePath, branch)
		}
		return nil, fmt.Errorf("%s not found on %s", filePath, branch)
	}
	return file, nil
}

// ReadFile returns the decoded contents of filePath on the active branch.
func (s *Session) ReadFile(ctx context.Context, filePath string) (string, error) {
	file, err := s.getFile(ctx, filePath, s.ActiveBranch())
	if err != nil {
		return "", err
	}
	return file.GetContent()
}

// ListDirectory returns every file under dir on the active branch.
func (s *Session) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	files, err := s.tree(ctx, s.ActiveBranch())
	if err != nil {
		return nil, err
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	if dir == "" {
		return files, nil
	}
	prefix := dir + "/"
	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			out = append(out, f)
		}
	}
	return out, nil
}

// BaseBranchOverview returns every file on the base branch.
func (s *Session) BaseBranchOverview(ctx context.Context) ([]string, error) {
	return s.tree(ctx, s.base)
}

// tree lists the blobs reachable from branch, sorted.
func (s *Session) tree(ctx context.Context, branch string) ([]string, error) {
	t, _, err := s.client.Git.GetTree(ctx, s.owner, s.repo, branch, true)
	if err != nil {
		return nil, fmt.Errorf("listing tree of %s: %w", branch, err)
	}
	if t.GetTruncated() {
		clog.FromContext(ctx).With("branch", branch).Warn("Repository tree listing was truncated")
	}
	files := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.GetType() == "blob" {
			files = append(files, e.GetPath())
		}
	}
	slices.Sort(files)
	return files, nil
}

// CreateFile adds filePath to the active branch. It fails if the file exists.
func (s *Session) CreateFile(ctx context.Context, filePath, content string) error {
	branch, err := s.writable()
	if err != nil {
		return err
	}
	_, _, resp, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, filePath, &github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s on %s", ErrFileExists, filePath, branch)
	case resp == nil || resp.StatusCode != http.StatusNotFound:
		return fmt.Errorf("checking %s on %s: %w", filePath, branch, err)
	}

	_, _, err = s.client.Repositories.CreateFile(ctx, s.owner, s.repo, filePath, &github.RepositoryContentFileOptions{
		Message: github.Ptr("Create " + filePath),
		Content: []byte(content),
		Branch:  github.Ptr(branch),
	})
	if err != nil {
		return fmt.Errorf("creating %s on %s: %w", filePath, branch, err)
	}
	clog.FromContext(ctx).With("path", filePath, "branch", branch).Info("Created file")
	return nil
}

// UpdateFile replaces every occurrence of oldContent with newContent in
// filePath on the active branch.
func (s *Session) UpdateFile(ctx context.Context, filePath, oldContent, newContent string) error {
	branch, err := s.writable()
	if err != nil {
		return err
	}
	file, err := s.getFile(ctx, filePath, branch)
	if err != nil {
		return err
	}
	current, err := file.GetContent()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filePath, err)
	}
	if oldContent == "" || !strings.Contains(current, oldContent) {
		return fmt.Errorf("%w: %s", ErrContentNotFound, filePath)
	}

	_, _, err = s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, filePath, &github.RepositoryContentFileOptions{
		Message: github.Ptr("Update " + filePath),
		Content: []byte(strings.ReplaceAll(current, oldContent, newContent)),
		SHA:     github.Ptr(file.GetSHA()),
		Branch:  github.Ptr(branch),
	})
	if err != nil {
		return fmt.Errorf("updating %s on %s: %w", filePath, branch, err)
	}
	clog.FromContext(ctx).With("path", filePath, "branch", branch).Info("Updated file")
	return nil
}

// DeleteFile removes filePath from the active branch.
func (s *Session) DeleteFile(ctx context.Context, filePath string) error {
	branch, err := s.writable()
	if err != nil {
		return err
	}
	file, err := s.getFile(ctx, filePath, branch)
	if err != nil {
		return err
	}
	_, _, err = s.client.Repositories.DeleteFile(ctx, s.owner, s.repo, filePath, &github.RepositoryContentFileOptions{
		Message: github.Ptr("Delete " + filePath),
		SHA:     github.Ptr(file.GetSHA()),
		Branch:  github.Ptr(branch),
	})
	if err != nil {
		return fmt.Errorf("deleting %s on %s: %w", filePath, branch, err)
	}
	clog.FromContext(ctx).With("path", filePath, "branch", branch).Info("Deleted file")
	return nil
}

// ListBranches returns the name of every branch.
func (s *Session) ListBranches(ctx context.Context) ([]string, error) {
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var names []string
	for {
		branches, resp, err := s.client.Repositories.ListBranches(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing branches: %w", err)
		}
		for _, b := range branches {
			names = append(names, b.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			return names, nil
		}
		opts.Page = resp.NextPage
	}
}

// SetActiveBranch makes name the active branch. The error for an unknown
// branch lists the ones that exist.
func (s *Session) SetActiveBranch(ctx context.Context, name string) error {
	names, err := s.ListBranches(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(names, name) {
		return fmt.Errorf("%w: %q, available branches: %s", ErrBranchNotFound, name, strings.Join(names, ", "))
	}
	s.setActive(name)
	clog.FromContext(ctx).With("branch", name).Info("Switched active branch")
	return nil
}

// CreateBranch creates a branch from the head of the base branch and makes
// it active. When name is taken, _v1, _v2 and so on are appended until a
// free name is found. The name actually created is returned.
func (s *Session) CreateBranch(ctx context.Context, name string) (string, error) {
	ref, _, err := s.client.Git.GetRef(ctx, s.owner, s.repo, "heads/"+s.base)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", s.base, err)
	}
	sha := ref.GetObject().GetSHA()

	for i := 0; i < maxBranchSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_v%d", name, i)
		}
		_, _, err := s.client.Git.CreateRef(ctx, s.owner, s.repo, github.CreateRef{
			Ref: "refs/heads/" + candidate,
			SHA: sha,
		})
		if err == nil {
			s.setActive(candidate)
			clog.FromContext(ctx).With("branch", candidate, "from", s.base).Info("Created branch")
			return candidate, nil
		}
		if !refExists(err) {
			return "", fmt.Errorf("creating branch %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("no free branch name for %q after %d attempts", name, maxBranchSuffix)
}

// refExists reports whether err is GitHub's answer to creating a ref that exists.
func refExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	return ghErr.Response.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(ghErr.Message), "already exists")
}
