package portfolio

import (
	"context"

	"github.com/matzehuels/ghfolio/pkg/classify"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
	"github.com/matzehuels/ghfolio/pkg/stats"
	"github.com/matzehuels/ghfolio/pkg/techstack"
)

// nodeLabel is added to a repository's technologies when a package.json
// declares a Node engine or a server framework.
const nodeLabel = "Node.js"

// Stats computes the statistics report of username over all relevant
// repositories.
func (s *Service) Stats(ctx context.Context, username string) (*stats.Stats, error) {
	var out stats.Stats
	err := s.report(ctx, snapshot.KindStats, username, &out, func(ctx context.Context) (any, int, error) {
		repos, err := s.relevantRepos(ctx, username)
		if err != nil {
			return nil, 0, err
		}
		samples, err := forEach(ctx, s.opts.Concurrency, repos, func(ctx context.Context, r github.Repo) (stats.RepoSample, bool) {
			return s.sample(ctx, username, r), true
		})
		if err != nil {
			return nil, len(repos), err
		}

		var agg stats.Aggregator
		for _, sample := range samples {
			agg.Add(sample)
		}
		return agg.Result(), len(repos), nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) sample(ctx context.Context, owner string, repo github.Repo) stats.RepoSample {
	sample := stats.RepoSample{
		Name:     repo.Name,
		Stars:    repo.Stars,
		Language: repo.Language,
	}

	langs, err := s.gh.ListLanguages(ctx, owner, repo.Name)
	if err != nil {
		s.skip(ctx, repo.Name, "languages", err)
	} else {
		if langs == nil {
			langs = []github.LanguageBytes{}
		}
		sample.Languages = langs
	}

	techs, err := s.technologies(ctx, owner, repo, true)
	if err != nil {
		s.skip(ctx, repo.Name, "manifests", err)
	}
	sample.Technologies = techs

	sample.Traits = classify.DetectTraits(classify.Signals{
		Name:        repo.Name,
		Description: repo.Description,
		Topics:      repo.Topics,
		Language:    repo.Language,
	})
	return sample
}

// technologies crawls the manifests of repo and returns the normalized
// technology labels in first-seen order.
func (s *Service) technologies(ctx context.Context, owner string, repo github.Repo, nodeHeuristic bool) ([]string, error) {
	results, err := s.crawler.Crawl(ctx, owner, repo.Name, repo.Branch())
	if err != nil {
		return nil, err
	}
	var set techstack.Set
	for _, r := range results {
		for _, dep := range r.Dependencies {
			if label, ok := techstack.Normalize(dep); ok {
				set.Add(label)
			}
		}
		if nodeHeuristic && r.NodeEngine {
			set.Add(nodeLabel)
		}
	}
	return set.Items(), nil
}
