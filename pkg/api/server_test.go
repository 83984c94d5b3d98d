package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/ghfolio/pkg/cache"
	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/portfolio"
	"github.com/matzehuels/ghfolio/pkg/projects"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
	"github.com/matzehuels/ghfolio/pkg/stats"
)

type fakeReporter struct {
	stats    *stats.Stats
	projects *portfolio.ProjectsReport
	err      error
	snaps    map[snapshot.Kind]any
	panicMsg string
	block    bool // wait for the request context to end

	mu    sync.Mutex
	users []string
}

func (f *fakeReporter) record(user string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, user)
}

func (f *fakeReporter) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.users...)
}

func (f *fakeReporter) Stats(ctx context.Context, user string) (*stats.Stats, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.record(user)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.stats, f.err
}

func (f *fakeReporter) Projects(_ context.Context, user string) (*portfolio.ProjectsReport, error) {
	f.record(user)
	return f.projects, f.err
}

func (f *fakeReporter) Snapshot(_ context.Context, kind snapshot.Kind, user string, v any) (*snapshot.Snapshot, error) {
	payload, ok := f.snaps[kind]
	if !ok {
		return nil, errs.New(errs.ErrCodeSnapshotNotFound, "no snapshot")
	}
	data, _ := json.Marshal(payload)
	snap := snapshot.New(kind, user, data, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return snap, snap.Decode(v)
}

func newTestServer(t *testing.T, rep Reporter, opts Options) *httptest.Server {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	srv := httptest.NewServer(New(rep, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return resp, body
}

func TestStatsEndpoint(t *testing.T) {
	rep := &fakeReporter{stats: &stats.Stats{TotalRepos: 3, TotalStars: 9,
		LanguageSkills: []stats.LanguageSkill{}, LanguagePresence: []stats.LanguagePresence{}, TechSkills: []stats.TechSkill{}}}
	srv := newTestServer(t, rep, Options{})

	resp, body := get(t, srv.URL+"/api/github-stats?username=%20octo%20")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != CacheControl {
		t.Errorf("Cache-Control = %q", got)
	}
	if body["totalRepos"] != float64(3) || body["totalStars"] != float64(9) {
		t.Errorf("body = %v", body)
	}
	if diff := cmp.Diff([]string{"octo"}, rep.seen()); diff != "" {
		t.Errorf("users (-want +got):\n%s", diff)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-Id = %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}
}

func TestProjectsEndpointDefaultUser(t *testing.T) {
	rep := &fakeReporter{projects: &portfolio.ProjectsReport{Projects: []projects.Project{{ID: 7, Title: "Demo"}}}}
	srv := newTestServer(t, rep, Options{DefaultUsername: "fallback"})

	resp, body := get(t, srv.URL+"/api/github-projects")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	list, ok := body["projects"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("projects = %v", body["projects"])
	}
	if list[0].(map[string]any)["title"] != "Demo" {
		t.Errorf("project = %v", list[0])
	}
	if diff := cmp.Diff([]string{"fallback"}, rep.seen()); diff != "" {
		t.Errorf("users (-want +got):\n%s", diff)
	}
}

func TestUsernameErrors(t *testing.T) {
	srv := newTestServer(t, &fakeReporter{}, Options{})

	tests := []struct {
		query string
		want  string
	}{
		{"", "Missing GitHub username"},
		{"?username=%20%20", "Missing GitHub username"},
		{"?username=bad_name", `invalid GitHub username: "bad_name"`},
	}
	for _, tt := range tests {
		for _, path := range []string{"/api/github-stats", "/api/github-projects"} {
			resp, body := get(t, srv.URL+path+tt.query)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s%s status = %d, want 400", path, tt.query, resp.StatusCode)
			}
			if body["error"] != tt.want {
				t.Errorf("%s%s error = %v, want %q", path, tt.query, body["error"], tt.want)
			}
		}
	}
}

func TestReportFailure(t *testing.T) {
	rep := &fakeReporter{err: errs.Wrap(errs.ErrCodeUpstream, errors.New("boom"), "listing repositories")}
	srv := newTestServer(t, rep, Options{})

	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["error"] != msgStatsFailed {
		t.Errorf("error = %v", body["error"])
	}
	if resp.Header.Get("Cache-Control") == CacheControl {
		t.Error("failures must not be cacheable")
	}

	resp, body = get(t, srv.URL+"/api/github-projects?username=octo")
	if resp.StatusCode != http.StatusInternalServerError || body["error"] != msgProjectsFailed {
		t.Errorf("projects failure = %d %v", resp.StatusCode, body)
	}
}

func TestCanceledErrorWithLiveClient(t *testing.T) {
	// Another request's cancellation surfaced through a shared computation.
	rep := &fakeReporter{err: errs.Wrap(errs.ErrCodeUpstream, context.Canceled, "listing repositories of octo")}
	srv := newTestServer(t, rep, Options{})

	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] != msgStatsFailed {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRequestTimeout(t *testing.T) {
	rep := &fakeReporter{block: true}
	srv := newTestServer(t, rep, Options{RequestTimeout: 20 * time.Millisecond})

	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusInternalServerError || body["error"] != msgStatsFailed {
		t.Errorf("timeout = %d %v, want 500 %q", resp.StatusCode, body, msgStatsFailed)
	}

	rep.snaps = map[snapshot.Kind]any{snapshot.KindStats: stats.Stats{TotalRepos: 3}}
	resp, body = get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusOK || resp.Header.Get(StaleHeader) != "true" {
		t.Fatalf("timeout with snapshot = %d, stale %q", resp.StatusCode, resp.Header.Get(StaleHeader))
	}
	if body["totalRepos"] != float64(3) {
		t.Errorf("body = %v", body)
	}
}

func TestRateLimited(t *testing.T) {
	now := time.Now()
	rep := &fakeReporter{err: fmt.Errorf("list: %w", errs.NewRateLimited(now.Add(90*time.Second), now))}
	srv := newTestServer(t, rep, Options{})

	resp, body := get(t, srv.URL+"/api/github-projects?username=octo")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") != "90" {
		t.Errorf("Retry-After = %q", resp.Header.Get("Retry-After"))
	}
	if body["error"] != msgRateLimited {
		t.Errorf("error = %v", body["error"])
	}
}

func TestStaleSnapshot(t *testing.T) {
	rep := &fakeReporter{
		err:   errs.New(errs.ErrCodeUpstream, "down"),
		snaps: map[snapshot.Kind]any{snapshot.KindStats: stats.Stats{TotalRepos: 11}},
	}
	srv := newTestServer(t, rep, Options{})

	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(StaleHeader) != "true" {
		t.Errorf("%s = %q", StaleHeader, resp.Header.Get(StaleHeader))
	}
	if resp.Header.Get(SnapshotHeader) != "2024-05-01T12:00:00Z" {
		t.Errorf("%s = %q", SnapshotHeader, resp.Header.Get(SnapshotHeader))
	}
	if body["totalRepos"] != float64(11) {
		t.Errorf("body = %v", body)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeReporter{}, Options{})
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" || body["version"] == nil {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, &fakeReporter{}, Options{})
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("X-Request-Id = %q, want %q", got, id)
	}
}

func TestPanicRecovered(t *testing.T) {
	srv := newTestServer(t, &fakeReporter{panicMsg: "kaboom"}, Options{})
	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("body = %v", body)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	srv := newTestServer(t, &fakeReporter{}, Options{StaticDir: t.TempDir()})
	resp, body := get(t, srv.URL+"/api/nope")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "Not found" {
		t.Errorf("unknown api route = %d %v", resp.StatusCode, body)
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, &fakeReporter{}, Options{StaticDir: dir})

	tests := map[string]string{
		"/":              "<html>app</html>",
		"/about":         "<html>app</html>",
		"/projects/42":   "<html>app</html>",
		"/assets":        "<html>app</html>",
		"/assets/app.js": "console.log(1)",
	}
	for path, want := range tests {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(data) != want {
			t.Errorf("GET %s = %d %q, want %q", path, resp.StatusCode, data, want)
		}
	}
}

// TestEndToEnd runs the real service against a fake GitHub API.
func TestEndToEnd(t *testing.T) {
	pkg := base64.StdEncoding.EncodeToString([]byte(`{"dependencies":{"react":"^18","express":"^4"}}`))
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/octo/repos":
			fmt.Fprint(w, `[
				{"id":1,"name":"shop","full_name":"octo/shop","visibility":"public","language":"TypeScript",
				 "stargazers_count":4,"topics":["ecommerce"],"updated_at":"2024-02-01T10:00:00Z","html_url":"https://github.com/octo/shop"},
				{"id":2,"name":"fork","full_name":"octo/fork","fork":true,"language":"Go"}
			]`)
		case "/repos/octo/shop/languages":
			fmt.Fprint(w, `{"TypeScript":900,"CSS":100}`)
		case "/repos/octo/shop/git/ref/heads/main":
			fmt.Fprint(w, `{"object":{"sha":"abc"}}`)
		case "/repos/octo/shop/git/trees/abc":
			fmt.Fprint(w, `{"tree":[{"path":"package.json","type":"blob"},{"path":"node_modules/x/package.json","type":"blob"}]}`)
		case "/repos/octo/shop/contents/package.json":
			fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q}`, pkg)
		default:
			http.NotFound(w, r)
		}
	}))
	defer gh.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	client := github.NewClient("", fc, github.Options{BaseURL: gh.URL})
	svc := portfolio.New(client, fc, snapshot.NewMemoryStore(0), logger, portfolio.Options{})
	srv := newTestServer(t, svc, Options{})

	resp, body := get(t, srv.URL+"/api/github-stats?username=octo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d %v", resp.StatusCode, body)
	}
	if body["totalRepos"] != float64(1) || body["totalStars"] != float64(4) {
		t.Errorf("stats = %v", body)
	}
	techs, _ := json.Marshal(body["techSkills"])
	want := `[{"count":1,"level":100,"name":"React"},{"count":1,"level":100,"name":"Express"},{"count":1,"level":100,"name":"Node.js"}]`
	if string(techs) != want {
		t.Errorf("techSkills = %s, want %s", techs, want)
	}

	resp, body = get(t, srv.URL+"/api/github-projects?username=octo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("projects status = %d %v", resp.StatusCode, body)
	}
	list := body["projects"].([]any)
	if len(list) != 1 {
		t.Fatalf("projects = %v", list)
	}
	p := list[0].(map[string]any)
	if p["title"] != "Shop" || p["lastUpdate"] != "01/02/2024" || p["demo"] != "https://octo.github.io/shop" {
		t.Errorf("project = %v", p)
	}
	if !strings.Contains(p["image"].(string), "230544") {
		t.Errorf("image = %v, want the ecommerce photo", p["image"])
	}
}
