package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ghfolio/pkg/cache"
	"github.com/matzehuels/ghfolio/pkg/integrations"
)

func TestListUserReposPaginates(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/repos" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("type") != "owner" || q.Get("sort") != "updated" || q.Get("per_page") != "100" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		page, _ := strconv.Atoi(q.Get("page"))
		pages = append(pages, q.Get("page"))

		n := 100
		if page == 2 {
			n = 3
		}
		repos := make([]Repo, n)
		for i := range repos {
			repos[i] = Repo{ID: int64(page*1000 + i), Name: fmt.Sprintf("repo-%d-%d", page, i)}
		}
		json.NewEncoder(w).Encode(repos)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	repos, err := c.ListUserRepos(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("ListUserRepos: %v", err)
	}
	if len(repos) != 103 {
		t.Errorf("got %d repos, want 103", len(repos))
	}
	if diff := cmp.Diff([]string{"1", "2"}, pages); diff != "" {
		t.Errorf("pages requested (-want +got):\n%s", diff)
	}
}

func TestListUserReposExactPageBoundary(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("page") == "1" {
			json.NewEncoder(w).Encode(make([]Repo, 100))
			return
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	repos, err := testClient(t, server.URL).ListUserRepos(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("ListUserRepos: %v", err)
	}
	if len(repos) != 100 || requests != 2 {
		t.Errorf("got %d repos in %d requests, want 100 in 2", len(repos), requests)
	}
}

func TestListUserReposInvalidUser(t *testing.T) {
	c := NewClient("", nil, Options{BaseURL: "http://127.0.0.1:0"})
	if _, err := c.ListUserRepos(context.Background(), "../etc"); err == nil {
		t.Error("expected validation error")
	}
}

func TestListUserReposNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := testClient(t, server.URL).ListUserRepos(context.Background(), "ghost")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListLanguagesKeepsOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/site/languages" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"TypeScript": 5000, "CSS": 1200, "HTML": 300, "Shell": 0}`))
	}))
	defer server.Close()

	langs, err := testClient(t, server.URL).ListLanguages(context.Background(), "octocat", "site")
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	want := []LanguageBytes{
		{Name: "TypeScript", Bytes: 5000},
		{Name: "CSS", Bytes: 1200},
		{Name: "HTML", Bytes: 300},
		{Name: "Shell", Bytes: 0},
	}
	if diff := cmp.Diff(want, langs); diff != "" {
		t.Errorf("languages (-want +got):\n%s", diff)
	}
}

func TestListLanguagesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	langs, err := testClient(t, server.URL).ListLanguages(context.Background(), "octocat", "empty")
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if len(langs) != 0 {
		t.Errorf("got %v, want no languages", langs)
	}
}

func TestGetRefAndTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/site/git/ref/heads/main":
			w.Write([]byte(`{"ref":"refs/heads/main","object":{"sha":"abc123","type":"commit"}}`))
		case "/repos/octocat/site/git/trees/abc123":
			if r.URL.Query().Get("recursive") != "1" {
				t.Errorf("tree request not recursive: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"sha":"abc123","tree":[
				{"path":"package.json","type":"blob","sha":"1"},
				{"path":"web","type":"tree","sha":"2"},
				{"path":"web/package.json","type":"blob","sha":"3"}
			],"truncated":false}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	sha, err := c.GetRef(context.Background(), "octocat", "site", "heads/main")
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	if sha != "abc123" {
		t.Errorf("sha = %q, want abc123", sha)
	}

	tree, err := c.GetTree(context.Background(), "octocat", "site", sha, true)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	var paths []string
	for _, e := range tree {
		if e.IsBlob() {
			paths = append(paths, e.Path)
		}
	}
	if diff := cmp.Diff([]string{"package.json", "web/package.json"}, paths); diff != "" {
		t.Errorf("blob paths (-want +got):\n%s", diff)
	}
}

func TestGetContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"dependencies":{"react":"^18"}}`))
	// GitHub wraps base64 content at 60 columns.
	wrapped := encoded[:10] + "\n" + encoded[10:]

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/site/contents/package.json":
			json.NewEncoder(w).Encode(contentResponse{Type: "file", Content: wrapped, Encoding: "base64"})
		case "/repos/octocat/site/contents/web":
			w.Write([]byte(`[{"name":"package.json","type":"file"}]`))
		case "/repos/octocat/site/contents/link":
			w.Write([]byte(`{"type":"symlink","target":"x"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	data, err := c.GetContent(context.Background(), "octocat", "site", "package.json")
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if string(data) != `{"dependencies":{"react":"^18"}}` {
		t.Errorf("content = %q", data)
	}

	for _, path := range []string{"web", "link"} {
		if _, err := c.GetContent(context.Background(), "octocat", "site", path); !errors.Is(err, ErrNotAFile) {
			t.Errorf("GetContent(%q) error = %v, want ErrNotAFile", path, err)
		}
	}

	if _, err := c.GetContent(context.Background(), "octocat", "site", "missing.json"); !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
}

func TestRefAndContentRetryTransientErrors(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{}`))
	var refCalls, contentCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/site/git/ref/heads/main":
			if refCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"object":{"sha":"abc123"}}`))
		case "/repos/octocat/site/contents/package.json":
			if contentCalls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(contentResponse{Type: "file", Content: encoded, Encoding: "base64"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if sha, err := c.GetRef(context.Background(), "octocat", "site", "heads/main"); err != nil || sha != "abc123" {
		t.Errorf("GetRef = %q, %v", sha, err)
	}
	if data, err := c.GetContent(context.Background(), "octocat", "site", "package.json"); err != nil || string(data) != `{}` {
		t.Errorf("GetContent = %q, %v", data, err)
	}
	if refCalls.Load() != 2 || contentCalls.Load() != 2 {
		t.Errorf("calls: ref %d, content %d; want 2 each", refCalls.Load(), contentCalls.Load())
	}
}

func TestNewClientHeaders(t *testing.T) {
	var auth, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		accept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient("secret", nil, Options{BaseURL: server.URL, HTTPClient: server.Client()})
	if _, err := c.ListLanguages(context.Background(), "octocat", "site"); err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if accept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", accept)
	}
}

func TestRepoHelpers(t *testing.T) {
	r := Repo{FullName: "octocat/site", Private: false}
	if !r.IsPublic() {
		t.Error("non-private repo should be public")
	}
	if (Repo{Private: true, Visibility: "private"}).IsPublic() {
		t.Error("private repo should not be public")
	}
	if r.Owner() != "octocat" {
		t.Errorf("Owner() = %q", r.Owner())
	}
	if r.Branch() != "main" {
		t.Errorf("Branch() = %q, want main", r.Branch())
	}
	if (Repo{DefaultBranch: "trunk"}).Branch() != "trunk" {
		t.Error("Branch() should return the default branch")
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fc.Close() })
	return NewClient("", fc, Options{BaseURL: serverURL, CacheTTL: 0})
}
