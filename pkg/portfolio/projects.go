package portfolio

import (
	"context"

	"github.com/matzehuels/ghfolio/pkg/integrations/github"
	"github.com/matzehuels/ghfolio/pkg/projects"
	"github.com/matzehuels/ghfolio/pkg/snapshot"
)

// ProjectsReport is the payload of the projects endpoint.
type ProjectsReport struct {
	Projects []projects.Project `json:"projects"`
}

// Projects builds the project cards of username from the first relevant
// repositories, most starred and most recently updated first.
func (s *Service) Projects(ctx context.Context, username string) (*ProjectsReport, error) {
	var out ProjectsReport
	err := s.report(ctx, snapshot.KindProjects, username, &out, func(ctx context.Context) (any, int, error) {
		repos, err := s.relevantRepos(ctx, username)
		if err != nil {
			return nil, 0, err
		}
		repos = repos[:min(len(repos), s.opts.MaxProjects)]

		cards, err := forEach(ctx, s.opts.Concurrency, repos, func(ctx context.Context, r github.Repo) (projects.Project, bool) {
			return s.project(ctx, username, r)
		})
		if err != nil {
			return nil, len(repos), err
		}
		projects.Sort(cards)
		return &ProjectsReport{Projects: cards}, len(repos), nil
	})
	if err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []projects.Project{}
	}
	return &out, nil
}

// project builds one card. A repository whose languages cannot be read is
// dropped; unreadable manifests only cost it its technologies.
func (s *Service) project(ctx context.Context, owner string, repo github.Repo) (projects.Project, bool) {
	langs, err := s.gh.ListLanguages(ctx, owner, repo.Name)
	if err != nil {
		s.skip(ctx, repo.Name, "languages", err)
		return projects.Project{}, false
	}

	techs, err := s.technologies(ctx, owner, repo, false)
	if err != nil {
		s.skip(ctx, repo.Name, "manifests", err)
		techs = nil
	}
	return projects.Build(repo, langs, techs, owner, s.opts.Projects), true
}
