/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package fileupsert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"chainguard.dev/ghagent/repos/ghclient"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v84/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type storedFile struct {
	content []byte
	sha     string
	branch  string
}

type write struct {
	Path    string
	Message string
	Branch  string
	SHA     string
	Content []byte
}

// fakeGitHub serves the subset of the contents API that Upsert uses.
type fakeGitHub struct {
	t     *testing.T
	owner string
	repo  string

	mu        sync.Mutex
	files     map[string]storedFile
	dirs      map[string]bool
	requests  []string
	writes    []write
	lookupErr int
	nextSHA   int
}

func newFakeGitHub(t *testing.T, repository string) (*fakeGitHub, *httptest.Server) {
	owner, repo, _ := strings.Cut(repository, "/")
	f := &fakeGitHub{t: t, owner: owner, repo: repo, files: map[string]storedFile{}, dirs: map[string]bool{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	repoPath := fmt.Sprintf("/repos/%s/%s", f.owner, f.repo)
	switch {
	case r.Method == http.MethodGet && r.URL.Path == repoPath:
		writeJSON(w, http.StatusOK, map[string]any{"full_name": f.owner + "/" + f.repo, "default_branch": "main"})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, repoPath+"/contents/"):
		if f.lookupErr != 0 {
			writeJSON(w, f.lookupErr, map[string]any{"message": "Server Error"})
			return
		}
		path := strings.TrimPrefix(r.URL.Path, repoPath+"/contents/")
		ref := r.URL.Query().Get("ref")
		if f.dirs[path] {
			writeJSON(w, http.StatusOK, []map[string]any{{"type": "file", "name": "a.png", "path": path + "/a.png"}})
			return
		}
		file, ok := f.files[path]
		if !ok || file.branch != ref {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": "file", "name": path, "path": path, "sha": file.sha})

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, repoPath+"/contents/"):
		path := strings.TrimPrefix(r.URL.Path, repoPath+"/contents/")
		var body struct {
			Message string `json:"message"`
			Content []byte `json:"content"`
			SHA     string `json:"sha"`
			Branch  string `json:"branch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("decoding PUT body: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		f.writes = append(f.writes, write{Path: path, Message: body.Message, Branch: body.Branch, SHA: body.SHA, Content: body.Content})

		existing, exists := f.files[path]
		switch {
		case exists && body.SHA == "":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": `Invalid request. "sha" wasn't supplied.`})
			return
		case exists && body.SHA != existing.sha:
			writeJSON(w, http.StatusConflict, map[string]any{"message": "sha does not match"})
			return
		}

		f.nextSHA++
		sha := fmt.Sprintf("sha-%d", f.nextSHA)
		f.files[path] = storedFile{content: body.Content, sha: sha, branch: body.Branch}
		status := http.StatusCreated
		if exists {
			status = http.StatusOK
		}
		writeJSON(w, status, map[string]any{
			"content": map[string]any{
				"name":     path,
				"path":     path,
				"sha":      sha,
				"html_url": fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", f.owner, f.repo, body.Branch, path),
			},
			"commit": map[string]any{"sha": "commit-" + sha, "message": body.Message},
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeLocal(t *testing.T, rel string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpsertCreatesFile(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	content := []byte("0123456789")
	local := writeLocal(t, "logo.png", content)

	u := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL))
	res := u.Upsert(context.Background(), Request{LocalPath: local})

	if got, want := res.String(), "Created image at https://github.com/owner/site/blob/dev/logo.png"; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
	if res.Action != ActionCreated || res.Err() != nil {
		t.Errorf("action: got = %q (%v), wanted = %q", res.Action, res.Err(), ActionCreated)
	}

	want := []write{{Path: "logo.png", Message: DefaultCommitMessage, Branch: DefaultBranch, Content: content}}
	if diff := cmp.Diff(want, gh.writes); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestUpsertUpdatesExistingFile(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	gh.files["logo.png"] = storedFile{content: []byte("old"), sha: "abc123", branch: "dev"}
	local := writeLocal(t, "logo.png", []byte("new bytes"))

	res := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: local})

	if got, want := res.String(), "Updated image at https://github.com/owner/site/blob/dev/logo.png"; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
	if len(gh.writes) != 1 {
		t.Fatalf("writes: got = %d, wanted = 1", len(gh.writes))
	}
	if gh.writes[0].SHA != "abc123" {
		t.Errorf("update sha: got = %q, wanted = %q", gh.writes[0].SHA, "abc123")
	}
	if string(gh.files["logo.png"].content) != "new bytes" {
		t.Errorf("stored content: got = %q, wanted = %q", gh.files["logo.png"].content, "new bytes")
	}
}

func TestUpsertMissingLocalFile(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	missing := filepath.Join(t.TempDir(), "nope.png")

	res := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: missing})

	if got, want := res.String(), "Error: File not found at "+missing; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
	if !errors.Is(res.Err(), ErrFileNotFound) {
		t.Errorf("error: got = %v, wanted = %v", res.Err(), ErrFileNotFound)
	}
	if len(gh.requests) != 0 {
		t.Errorf("remote requests: got = %v, wanted none", gh.requests)
	}
}

func TestUpsertMissingToken(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	local := writeLocal(t, "logo.png", []byte("x"))

	res := New(Config{Repository: "owner/site"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: local})

	if got, want := res.String(), "Error: GitHub token not found. Set GITHUB_TOKEN environment variable."; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
	if !errors.Is(res.Err(), ErrNoToken) {
		t.Errorf("error: got = %v, wanted = %v", res.Err(), ErrNoToken)
	}
	if len(gh.requests) != 0 {
		t.Errorf("remote requests: got = %v, wanted none", gh.requests)
	}
}

func TestUpsertMissingFileCheckedBeforeToken(t *testing.T) {
	res := New(Config{}).Upsert(context.Background(), Request{LocalPath: "/definitely/not/here.png"})
	if !strings.HasPrefix(res.String(), "Error: File not found at ") {
		t.Errorf("result: got = %q, wanted file not found", res.String())
	}
}

func TestUpsertCreateThenUpdate(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	local := writeLocal(t, "logo.png", []byte("same bytes"))
	u := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL))

	first := u.Upsert(context.Background(), Request{LocalPath: local})
	second := u.Upsert(context.Background(), Request{LocalPath: local})

	if first.Action != ActionCreated || second.Action != ActionUpdated {
		t.Errorf("actions: got = %q, %q, wanted = %q, %q", first.Action, second.Action, ActionCreated, ActionUpdated)
	}
	if len(gh.writes) != 2 {
		t.Fatalf("writes: got = %d, wanted = 2", len(gh.writes))
	}
	if gh.writes[1].SHA != "sha-1" {
		t.Errorf("second write sha: got = %q, wanted = %q", gh.writes[1].SHA, "sha-1")
	}
	if got := string(gh.files["logo.png"].content); got != "same bytes" {
		t.Errorf("stored content: got = %q, wanted = %q", got, "same bytes")
	}
}

func TestUpsertFlattensToBaseName(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	local := writeLocal(t, filepath.Join("a", "b", "image.png"), []byte("png"))

	res := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: local})

	if res.Err() != nil {
		t.Fatalf("Upsert: %v", res.Err())
	}
	if len(gh.writes) != 1 || gh.writes[0].Path != "image.png" {
		t.Errorf("remote path: got = %v, wanted = image.png", gh.writes)
	}
}

func TestUpsertLogoScenario(t *testing.T) {
	gh, srv := newFakeGitHub(t, "owner/site")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("\x89PNG\r\n\x1a\n\x00\x00"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	res := New(Config{Token: "t0ken", Repository: "owner/site", Branch: "dev"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: "./logo.png"})

	if got, want := res.String(), "Created image at https://github.com/owner/site/blob/dev/logo.png"; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
	if len(gh.writes) != 1 || len(gh.writes[0].Content) != 10 {
		t.Errorf("writes: got = %v, wanted one 10 byte create", gh.writes)
	}
}

func TestUpsertRequestOverrides(t *testing.T) {
	gh, srv := newFakeGitHub(t, "other/pages")
	local := writeLocal(t, "banner.gif", []byte("GIF89a"))

	res := New(Config{Token: "t0ken", Repository: "owner/site", Branch: "main", CommitMessage: "cfg"}, WithAPIURL(srv.URL)).
		Upsert(context.Background(), Request{LocalPath: local, Repository: "other/pages", Branch: "gh-pages", CommitMessage: "Add banner"})

	if res.Err() != nil {
		t.Fatalf("Upsert: %v", res.Err())
	}
	want := []write{{Path: "banner.gif", Message: "Add banner", Branch: "gh-pages", Content: []byte("GIF89a")}}
	if diff := cmp.Diff(want, gh.writes); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestUpsertRemoteFailures(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		setup      func(*fakeGitHub)
		lenient    bool
		wantAction Action
		wantWrites int
		wantReqs   int
	}{{
		name:       "repository not found",
		repository: "owner/missing",
		wantReqs:   1,
	}, {
		name:       "invalid repository",
		repository: "not-a-repository",
		wantReqs:   0,
	}, {
		name:       "lookup server error",
		repository: "owner/site",
		setup:      func(f *fakeGitHub) { f.lookupErr = http.StatusInternalServerError },
		wantReqs:   2,
	}, {
		name:       "lookup server error treated as absent",
		repository: "owner/site",
		setup:      func(f *fakeGitHub) { f.lookupErr = http.StatusInternalServerError },
		lenient:    true,
		wantAction: ActionCreated,
		wantWrites: 1,
		wantReqs:   3,
	}, {
		name:       "directory at remote path",
		repository: "owner/site",
		setup:      func(f *fakeGitHub) { f.dirs["logo.png"] = true },
		wantReqs:   2,
	}, {
		name:       "create rejected",
		repository: "owner/site",
		setup: func(f *fakeGitHub) {
			// Present on another branch: lookup misses, the create collides.
			f.files["logo.png"] = storedFile{sha: "zzz", branch: "main"}
		},
		wantWrites: 1,
		wantReqs:   3,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh, srv := newFakeGitHub(t, "owner/site")
			if tt.setup != nil {
				tt.setup(gh)
			}
			local := writeLocal(t, "logo.png", []byte("png"))

			res := New(Config{Token: "t0ken", Repository: tt.repository, TreatLookupErrorsAsAbsent: tt.lenient}, WithAPIURL(srv.URL)).
				Upsert(context.Background(), Request{LocalPath: local})

			if res.Action != tt.wantAction {
				t.Errorf("action: got = %q, wanted = %q (%s)", res.Action, tt.wantAction, res)
			}
			if tt.wantAction == "" && !strings.HasPrefix(res.String(), "Error uploading image: ") {
				t.Errorf("result: got = %q, wanted upload error", res.String())
			}
			if len(gh.writes) != tt.wantWrites {
				t.Errorf("writes: got = %d, wanted = %d", len(gh.writes), tt.wantWrites)
			}
			if len(gh.requests) != tt.wantReqs {
				t.Errorf("requests: got = %v, wanted %d", gh.requests, tt.wantReqs)
			}
		})
	}
}

func TestUpsertClientFactoryError(t *testing.T) {
	local := writeLocal(t, "logo.png", []byte("png"))
	factory := func(context.Context, string) (*github.Client, error) {
		return nil, errors.New("proxy unreachable")
	}

	res := New(Config{Token: "t0ken", Repository: "owner/site"}, WithClientFactory(factory)).
		Upsert(context.Background(), Request{LocalPath: local})

	if got, want := res.String(), "Error uploading image: proxy unreachable"; got != want {
		t.Errorf("result: got = %q, wanted = %q", got, want)
	}
}

func TestUpsertTokenSource(t *testing.T) {
	tests := []struct {
		name       string
		missing    bool
		token      string
		err        error
		want       string
		wantCalls  int
		wantWrites int
	}{{
		name:    "missing file never resolves",
		missing: true,
		token:   "t0ken",
		want:    "Error: File not found at ",
	}, {
		name:      "resolution failure",
		err:       errors.New("app is not installed on owner/site"),
		want:      "Error uploading image: app is not installed on owner/site",
		wantCalls: 1,
	}, {
		name:      "no credentials",
		want:      "Error: GitHub token not found. Set GITHUB_TOKEN environment variable.",
		wantCalls: 1,
	}, {
		name:       "resolved",
		token:      "t0ken",
		want:       "Created image at https://github.com/owner/site/blob/dev/logo.png",
		wantCalls:  1,
		wantWrites: 1,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh, srv := newFakeGitHub(t, "owner/site")
			local := writeLocal(t, "logo.png", []byte("png"))
			if tt.missing {
				local = filepath.Join(t.TempDir(), "nope.png")
			}

			var repos, tokens []string
			source := func(_ context.Context, repository string) (string, error) {
				repos = append(repos, repository)
				return tt.token, tt.err
			}
			factory := func(ctx context.Context, token string) (*github.Client, error) {
				tokens = append(tokens, token)
				return ghclient.ForToken(ctx, token, srv.URL)
			}

			res := New(Config{Repository: "owner/site"}, WithClientFactory(factory), WithTokenSource(source)).
				Upsert(context.Background(), Request{LocalPath: local})

			if !strings.HasPrefix(res.String(), tt.want) {
				t.Errorf("result: got = %q, wanted prefix %q", res.String(), tt.want)
			}
			if len(repos) != tt.wantCalls {
				t.Errorf("token source calls: got = %v, wanted %d", repos, tt.wantCalls)
			}
			if tt.wantCalls > 0 && repos[0] != "owner/site" {
				t.Errorf("token source repository: got = %q, wanted = %q", repos[0], "owner/site")
			}
			if len(gh.writes) != tt.wantWrites {
				t.Errorf("writes: got = %d, wanted = %d", len(gh.writes), tt.wantWrites)
			}
			if tt.wantWrites == 0 && len(gh.requests) != 0 {
				t.Errorf("remote requests: got = %v, wanted none", gh.requests)
			}
			if tt.wantWrites > 0 && (len(tokens) != 1 || tokens[0] != "t0ken") {
				t.Errorf("client tokens: got = %v, wanted = [t0ken]", tokens)
			}
		})
	}
}

func TestUpsertConfigTokenWinsOverSource(t *testing.T) {
	_, srv := newFakeGitHub(t, "owner/site")
	local := writeLocal(t, "logo.png", []byte("png"))
	source := func(context.Context, string) (string, error) {
		t.Error("token source called with a configured token")
		return "", nil
	}

	res := New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL), WithTokenSource(source)).
		Upsert(context.Background(), Request{LocalPath: local})
	if res.Err() != nil {
		t.Errorf("Upsert: %v", res.Err())
	}
}

func TestUpsertMetrics(t *testing.T) {
	_, srv := newFakeGitHub(t, "owner/site")
	local := writeLocal(t, "logo.png", []byte("png"))
	counter := func(action, outcome string) float64 {
		return testutil.ToFloat64(mUpserts.With(prometheus.Labels{"action": action, "outcome": outcome}))
	}

	beforeCreated := counter("created", outcomeSuccess)
	beforeNoToken := counter("none", outcomeNoToken)

	New(Config{Token: "t0ken", Repository: "owner/site"}, WithAPIURL(srv.URL)).Upsert(context.Background(), Request{LocalPath: local})
	New(Config{Repository: "owner/site"}).Upsert(context.Background(), Request{LocalPath: local})

	if got := counter("created", outcomeSuccess) - beforeCreated; got != 1 {
		t.Errorf("created/success delta: got = %v, wanted = 1", got)
	}
	if got := counter("none", outcomeNoToken) - beforeNoToken; got != 1 {
		t.Errorf("none/no_token delta: got = %v, wanted = 1", got)
	}
}

func TestResultString(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Result{Action: ActionCreated, URL: "u"}, "Created image at u"},
		{Result{Action: ActionUpdated, URL: "u"}, "Updated image at u"},
		{uploadFailed(errors.New("boom")), "Error uploading image: boom"},
		{notFound("x.png"), "Error: File not found at x.png"},
	}
	for _, tt := range tests {
		if got := tt.res.String(); got != tt.want {
			t.Errorf("String(): got = %q, wanted = %q", got, tt.want)
		}
	}
}
