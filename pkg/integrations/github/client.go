package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/ghfolio/pkg/cache"
	"github.com/matzehuels/ghfolio/pkg/integrations"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
)

// ErrNotAFile is returned by [Client.GetContent] when the path names a
// directory, symlink or submodule, or the file carries no content.
var ErrNotAFile = errors.New("not a file")

// Options configures a [Client].
type Options struct {
	BaseURL    string        // API root, defaults to https://api.github.com
	CacheTTL   time.Duration // TTL for cached API responses
	Refresh    bool          // bypass cached responses (fresh ones are still stored)
	HTTPClient *http.Client  // optional replacement transport
	Keyer      cache.Keyer   // optional cache keyer
}

// Client provides access to the GitHub REST API.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
// A nil cache disables response caching.
func NewClient(token string, c cache.Cache, opts Options) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}

	ic := integrations.NewClient(c, "github", opts.CacheTTL, headers).
		WithHTTPClient(opts.HTTPClient).
		WithKeyer(opts.Keyer)

	return &Client{Client: ic, baseURL: base, refresh: opts.Refresh}
}

// ListUserRepos returns every repository owned by user, most recently
// updated first. Pages of 100 are requested until a short page is returned.
func (c *Client) ListUserRepos(ctx context.Context, user string) ([]Repo, error) {
	if err := ValidateOwner(user); err != nil {
		return nil, err
	}

	var all []Repo
	err := c.Cached(ctx, "repos:"+strings.ToLower(user), c.refresh, &all, func() error {
		all = all[:0]
		for page := 1; ; page++ {
			url := fmt.Sprintf("%s/users/%s/repos?type=owner&sort=updated&per_page=%d&page=%d",
				c.baseURL, user, perPage, page)
			var repos []Repo
			if err := c.Get(ctx, url, &repos); err != nil {
				return err
			}
			all = append(all, repos...)
			if len(repos) < perPage {
				return nil
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list repositories of %s: %w", user, err)
	}
	return all, nil
}

// ListLanguages returns the language byte counts of a repository in the
// order GitHub reports them (largest first).
func (c *Client) ListLanguages(ctx context.Context, owner, repo string) ([]LanguageBytes, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var langs []LanguageBytes
	key := "languages:" + owner + "/" + repo
	err := c.Cached(ctx, key, c.refresh, &langs, func() error {
		body, err := c.GetText(ctx, fmt.Sprintf("%s/repos/%s/%s/languages", c.baseURL, owner, repo))
		if err != nil {
			return err
		}
		langs, err = decodeLanguages([]byte(body))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("languages of %s/%s: %w", owner, repo, err)
	}
	return langs, nil
}

// GetRef resolves a reference such as "heads/main" to a commit SHA.
func (c *Client) GetRef(ctx context.Context, owner, repo, ref string) (string, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}

	var resp refResponse
	url := fmt.Sprintf("%s/repos/%s/%s/git/ref/%s", c.baseURL, owner, repo, integrations.EscapePath(ref))
	err := cache.RetryWithBackoff(ctx, func() error {
		return c.Get(ctx, url, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("ref %s of %s/%s: %w", ref, owner, repo, err)
	}
	if resp.Object.SHA == "" {
		return "", fmt.Errorf("ref %s of %s/%s: %w", ref, owner, repo, integrations.ErrNotFound)
	}
	return resp.Object.SHA, nil
}

// GetTree lists the entries of a tree. With recursive set the whole
// repository is walked in one request.
func (c *Client) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) ([]TreeEntry, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var resp treeResponse
	key := "tree:" + owner + "/" + repo + "@" + sha
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s", c.baseURL, owner, repo, sha)
	if recursive {
		key += ":r"
		url += "?recursive=1"
	}
	// Trees are addressed by SHA and never change, so they are always served from cache.
	err := c.Cached(ctx, key, false, &resp, func() error {
		return c.Get(ctx, url, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("tree %s of %s/%s: %w", sha, owner, repo, err)
	}
	return resp.Tree, nil
}

// GetContent fetches and decodes a file from the default branch.
func (c *Client) GetContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, integrations.EscapePath(path))
	var raw json.RawMessage
	err := cache.RetryWithBackoff(ctx, func() error {
		return c.Get(ctx, url, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("content %s of %s/%s: %w", path, owner, repo, err)
	}
	return decodeContent(raw)
}

func decodeContent(raw json.RawMessage) ([]byte, error) {
	// Directories come back as an array of entries.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, ErrNotAFile
	}

	var resp contentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if resp.Type != "file" || resp.Content == "" {
		return nil, ErrNotAFile
	}
	if resp.Encoding != "" && resp.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Encoding)
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return data, nil
}

// decodeLanguages reads the {"Go": 1234, ...} object while keeping key order,
// which encoding/json discards when decoding into a map.
func decodeLanguages(data []byte) ([]LanguageBytes, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode languages: expected object")
	}

	langs := []LanguageBytes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode languages: %w", err)
		}
		name, _ := tok.(string)
		var n int64
		if err := dec.Decode(&n); err != nil {
			return nil, fmt.Errorf("decode languages: %s: %w", name, err)
		}
		langs = append(langs, LanguageBytes{Name: name, Bytes: n})
	}
	return langs, nil
}
