/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolkit_test

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"chainguard.dev/ghagent/repos/ghclient"
	"golang.org/x/oauth2"
)

const (
	owner    = "octo"
	repoName = "site"
)

// fakeGitHub serves the slice of the REST and GraphQL APIs a Session uses.
type fakeGitHub struct {
	mu         sync.Mutex
	defaultRef string
	// branch -> path -> content
	branches map[string]map[string]string
	prs      []map[string]any
	writes   int
	pageSize int
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *ghclient.Clients) {
	t.Helper()
	f := &fakeGitHub{
		defaultRef: "main",
		branches: map[string]map[string]string{
			"main": {
				"README.md":       "# site\n",
				"docs/intro.md":   "hello world\n",
				"docs/api/ref.md": "reference\n",
				"assets/logo.png": "png",
			},
		},
		pageSize: 2,
	}

	prefix := "/repos/" + owner + "/" + repoName
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix, f.getRepo)
	mux.HandleFunc("GET "+prefix+"/contents/{path...}", f.getContents)
	mux.HandleFunc("PUT "+prefix+"/contents/{path...}", f.putContents)
	mux.HandleFunc("DELETE "+prefix+"/contents/{path...}", f.deleteContents)
	mux.HandleFunc("GET "+prefix+"/git/trees/{ref...}", f.getTree)
	mux.HandleFunc("GET "+prefix+"/git/ref/{ref...}", f.getRef)
	mux.HandleFunc("POST "+prefix+"/git/refs", f.createRef)
	mux.HandleFunc("GET "+prefix+"/branches", f.listBranches)
	mux.HandleFunc("POST "+prefix+"/pulls", f.createPull)
	mux.HandleFunc("POST /graphql", f.graphql)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	rest, err := ghclient.ForToken(ctx, "test-token", srv.URL)
	if err != nil {
		t.Fatalf("ForToken: %v", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return f, &ghclient.Clients{
		Owner:   owner,
		Repo:    repoName,
		REST:    rest,
		GraphQL: ghclient.NewGraphQL(ctx, ts, srv.URL),
	}
}

func blobSHA(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGitHub) file(branch, p string) (string, bool) {
	files, ok := f.branches[branch]
	if !ok {
		return "", false
	}
	c, ok := files[p]
	return c, ok
}

func (f *fakeGitHub) getRepo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"name": repoName, "default_branch": f.defaultRef})
}

func (f *fakeGitHub) getContents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ref := r.PathValue("path"), r.URL.Query().Get("ref")
	if c, ok := f.file(ref, p); ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"type":     "file",
			"name":     path.Base(p),
			"path":     p,
			"sha":      blobSHA(c),
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(c)),
		})
		return
	}
	var entries []map[string]any
	for name := range f.branches[ref] {
		if strings.HasPrefix(name, p+"/") {
			entries = append(entries, map[string]any{"type": "file", "path": name, "name": path.Base(name)})
		}
	}
	if len(entries) > 0 {
		writeJSON(w, http.StatusOK, entries)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
}

func (f *fakeGitHub) putContents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body struct {
		Message string `json:"message"`
		Content []byte `json:"content"`
		SHA     string `json:"sha"`
		Branch  string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	files, ok := f.branches[body.Branch]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Branch not found"})
		return
	}
	p := r.PathValue("path")
	existing, exists := files[p]
	switch {
	case exists && body.SHA != blobSHA(existing):
		writeJSON(w, http.StatusConflict, map[string]any{"message": "sha does not match"})
		return
	case !exists && body.SHA != "":
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	files[p] = string(body.Content)
	f.writes++
	writeJSON(w, http.StatusCreated, map[string]any{
		"content": map[string]any{"path": p, "sha": blobSHA(files[p])},
		"commit":  map[string]any{"message": body.Message},
	})
}

func (f *fakeGitHub) deleteContents(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body struct {
		SHA    string `json:"sha"`
		Branch string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	p := r.PathValue("path")
	existing, ok := f.file(body.Branch, p)
	if !ok || body.SHA != blobSHA(existing) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "sha does not match"})
		return
	}
	delete(f.branches[body.Branch], p)
	f.writes++
	writeJSON(w, http.StatusOK, map[string]any{"commit": map[string]any{"message": "deleted"}})
}

func (f *fakeGitHub) getTree(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files, ok := f.branches[r.PathValue("ref")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	dirs := map[string]bool{}
	var entries []map[string]any
	for p := range files {
		entries = append(entries, map[string]any{"path": p, "type": "blob"})
		for d := path.Dir(p); d != "."; d = path.Dir(d) {
			dirs[d] = true
		}
	}
	for d := range dirs {
		entries = append(entries, map[string]any{"path": d, "type": "tree"})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sha": "tree", "truncated": false, "tree": entries})
}

func (f *fakeGitHub) getRef(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	branch := strings.TrimPrefix(r.PathValue("ref"), "heads/")
	if _, ok := f.branches[branch]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":    "refs/heads/" + branch,
		"object": map[string]any{"type": "commit", "sha": "sha-" + branch},
	})
}

func (f *fakeGitHub) createRef(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	name := strings.TrimPrefix(body.Ref, "refs/heads/")
	if _, ok := f.branches[name]; ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Reference already exists"})
		return
	}
	from := strings.TrimPrefix(body.SHA, "sha-")
	files := make(map[string]string, len(f.branches[from]))
	for k, v := range f.branches[from] {
		files[k] = v
	}
	f.branches[name] = files
	writeJSON(w, http.StatusCreated, map[string]any{
		"ref":    body.Ref,
		"object": map[string]any{"type": "commit", "sha": body.SHA},
	})
}

func (f *fakeGitHub) listBranches(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.branches))
	for name := range f.branches {
		names = append(names, name)
	}
	slices.Sort(names)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	page = max(page, 1)
	start := min((page-1)*f.pageSize, len(names))
	end := min(start+f.pageSize, len(names))
	if end < len(names) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
	}
	out := make([]map[string]any, 0, end-start)
	for _, name := range names[start:end] {
		out = append(out, map[string]any{"name": name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeGitHub) createPull(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Head  string `json:"head"`
		Base  string `json:"base"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	number := len(f.prs) + 1
	pr := map[string]any{
		"number":      number,
		"title":       body.Title,
		"url":         fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repoName, number),
		"headRefName": body.Head,
		"baseRefName": body.Base,
	}
	f.prs = append(f.prs, pr)
	writeJSON(w, http.StatusCreated, map[string]any{
		"number":   number,
		"title":    body.Title,
		"html_url": pr["url"],
	})
}

// graphql answers the open pull request query one node per page.
func (f *fakeGitHub) graphql(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	if req.Variables["owner"] != owner || req.Variables["repo"] != repoName {
		writeJSON(w, http.StatusOK, map[string]any{"errors": []map[string]any{{"message": "Could not resolve to a Repository"}}})
		return
	}

	idx := 0
	if c, ok := req.Variables["cursor"].(string); ok {
		idx, _ = strconv.Atoi(c)
	}
	var nodes []map[string]any
	if idx < len(f.prs) {
		nodes = append(nodes, f.prs[idx])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"repository": map[string]any{
				"pullRequests": map[string]any{
					"nodes": nodes,
					"pageInfo": map[string]any{
						"hasNextPage": idx+1 < len(f.prs),
						"endCursor":   strconv.Itoa(idx + 1),
					},
				},
			},
		},
	})
}
