// Package github provides an HTTP client for the GitHub REST API.
//
// # Overview
//
// The client covers the handful of endpoints the portfolio pipeline needs:
// listing a user's repositories, reading their language breakdown, and
// walking the git tree to download dependency manifests.
//
// # Usage
//
//	client := github.NewClient(token, fileCache, github.Options{CacheTTL: 30 * time.Minute})
//
//	repos, err := client.ListUserRepos(ctx, "octocat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sha, _ := client.GetRef(ctx, "octocat", repos[0].Name, "heads/"+repos[0].Branch())
//	tree, _ := client.GetTree(ctx, "octocat", repos[0].Name, sha, true)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour. An exhausted quota surfaces
// as [integrations.ErrRateLimited].
//
// # Caching
//
// Repository listings and language breakdowns are cached for the TTL given
// in [Options]. Trees are addressed by commit SHA and cached for the same
// TTL regardless of [Options.Refresh].
//
// [integrations.ErrRateLimited]: github.com/matzehuels/ghfolio/pkg/integrations.ErrRateLimited
package github
