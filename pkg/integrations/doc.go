// Package integrations provides the shared HTTP client used by API clients.
//
// # Overview
//
// The [Client] type wraps [net/http] with the behaviour every upstream API
// needs: default headers, JSON decoding, response caching through
// [cache.Cache], and retries with exponential backoff for transient failures.
// The GitHub REST client lives in the [github] subpackage.
//
// # Errors
//
// Responses are mapped to sentinel errors:
//
//   - 404 → [ErrNotFound]
//   - 403/429 with an exhausted quota → [ErrRateLimited]
//   - 5xx and transport failures → [ErrNetwork], wrapped with
//     [cache.Retryable] so [Client.Cached] retries them
//
// # Caching
//
// [Client.Cached] stores the decoded value as JSON under a key built by the
// client's [cache.Keyer]:
//
//	var repos []github.Repo
//	err := c.Cached(ctx, "repos:octocat", false, &repos, func() error {
//	    return c.Get(ctx, url, &repos)
//	})
//
// [github]: github.com/matzehuels/ghfolio/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/ghfolio/pkg/cache.Cache
// [cache.Retryable]: github.com/matzehuels/ghfolio/pkg/cache.Retryable
package integrations
