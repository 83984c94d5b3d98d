package manifest

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/observability"
)

// Source is the subset of the GitHub client the crawler needs.
type Source interface {
	GetRef(ctx context.Context, owner, repo, ref string) (string, error)
	GetTree(ctx context.Context, owner, repo, sha string, recursive bool) ([]github.TreeEntry, error)
	GetContent(ctx context.Context, owner, repo, path string) ([]byte, error)
}

// Crawler finds and parses the manifests of a repository.
type Crawler struct {
	src     Source
	parsers []Parser
	limit   int
	logger  *log.Logger
}

// NewCrawler creates a Crawler. With no parsers the [Default] set is used.
func NewCrawler(src Source, parsers []Parser, logger *log.Logger) *Crawler {
	if len(parsers) == 0 {
		parsers = Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Crawler{src: src, parsers: parsers, limit: DefaultLimit, logger: logger}
}

// WithLimit caps the number of manifests read per repository.
func (c *Crawler) WithLimit(n int) *Crawler {
	if n > 0 {
		c.limit = n
	}
	return c
}

// Crawl returns one Result per manifest that was fetched and parsed, in tree
// order. Failing to resolve the branch or list the tree is an error; a single
// unreadable manifest is logged and skipped.
func (c *Crawler) Crawl(ctx context.Context, owner, repo, branch string) ([]Result, error) {
	sha, err := c.src.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return nil, err
	}
	tree, err := c.src.GetTree(ctx, owner, repo, sha, true)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, p := range SelectPaths(tree, c.parsers, c.limit) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := c.read(ctx, owner, repo, p)
		if err != nil {
			c.logger.Debug("skipping manifest", "repo", repo, "path", p, "err", err)
			observability.Collect().OnRepoSkipped(ctx, repo, "manifest:"+p, err)
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

func (c *Crawler) read(ctx context.Context, owner, repo, path string) (*Result, error) {
	parser, err := Detect(path, c.parsers)
	if err != nil {
		return nil, err
	}
	data, err := c.src.GetContent(ctx, owner, repo, path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	return res, nil
}
