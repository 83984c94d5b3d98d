// Package manifest extracts dependency names from package manifests found in
// a repository tree.
//
// # Overview
//
// A [Parser] reads one manifest format and returns the names of the
// dependencies it declares, in the order the file declares them:
//
//   - package.json: dependencies, devDependencies, peerDependencies, optionalDependencies
//   - go.mod: direct requires, reduced to the last path element
//   - requirements.txt and pyproject.toml (PEP 621 and Poetry tables)
//   - Cargo.toml: dependencies, dev-dependencies, build-dependencies
//   - pom.xml: dependency artifactIds
//   - Gemfile and composer.json
//
// Names are returned as written; turning them into display labels is the job
// of the techstack package.
//
// # Crawling
//
// [Crawler] resolves the default branch to a commit, lists the tree
// recursively, picks at most 25 supported manifests with [SelectPaths], and
// parses each one. A file that cannot be fetched or parsed is logged and
// skipped.
//
//	c := manifest.NewCrawler(client, manifest.Default(), logger)
//	files, err := c.Crawl(ctx, "octocat", "site", "main")
package manifest
