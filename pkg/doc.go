// Package pkg holds the libraries behind ghfolio, a backend that turns a
// GitHub account into the statistics and project cards of a portfolio site.
//
// # Overview
//
// The packages fall into four groups:
//
//  1. Domain: [techstack] (dependency name → display label), [classify]
//     (repository categories and traits), [stats] (aggregation),
//     [projects] (project cards) and [manifest] (dependency manifests).
//  2. Orchestration: [portfolio] runs the collection for one user with
//     bounded concurrency, caching and snapshots.
//  3. Infrastructure: [cache], [snapshot], [config], [errors] and
//     [observability].
//  4. Edges: [integrations/github] talks to the GitHub REST API and [api]
//     serves the reports over HTTP.
//
// # Data flow
//
//	GET /users/{user}/repos (paginated)
//	         ↓
//	    filter: public, not fork, not archived
//	         ↓
//	    per repository: languages + manifest crawl   [portfolio, manifest]
//	         ↓
//	    normalize dependency names                   [techstack]
//	         ↓
//	    classify / aggregate / build cards           [classify, stats, projects]
//	         ↓
//	    JSON for /api/github-stats and /api/github-projects
//
// Everything after the fetch is a pure function over small in-memory
// collections. A repository that fails at any stage is logged and skipped;
// only a failed repository listing fails the report.
//
// [techstack]: github.com/matzehuels/ghfolio/pkg/techstack
// [classify]: github.com/matzehuels/ghfolio/pkg/classify
// [stats]: github.com/matzehuels/ghfolio/pkg/stats
// [projects]: github.com/matzehuels/ghfolio/pkg/projects
// [manifest]: github.com/matzehuels/ghfolio/pkg/manifest
// [portfolio]: github.com/matzehuels/ghfolio/pkg/portfolio
// [cache]: github.com/matzehuels/ghfolio/pkg/cache
// [snapshot]: github.com/matzehuels/ghfolio/pkg/snapshot
// [config]: github.com/matzehuels/ghfolio/pkg/config
// [errors]: github.com/matzehuels/ghfolio/pkg/errors
// [observability]: github.com/matzehuels/ghfolio/pkg/observability
// [integrations/github]: github.com/matzehuels/ghfolio/pkg/integrations/github
// [api]: github.com/matzehuels/ghfolio/pkg/api
package pkg
