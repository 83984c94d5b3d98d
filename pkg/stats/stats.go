// Package stats aggregates per-repository samples into the skill and
// language breakdowns shown on the portfolio.
//
// Feed every relevant repository to an [Aggregator] in listing order, then
// call [Aggregator.Result]. Ties in every ranking keep first-seen order.
package stats

import (
	"github.com/matzehuels/ghfolio/pkg/classify"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
)

// TopN caps languageSkills and techSkills.
const TopN = 12

// RepoSample is what the aggregator needs to know about one repository.
type RepoSample struct {
	Name      string
	Stars     int
	Language  string                 // primary language
	Languages []github.LanguageBytes // nil when the breakdown could not be fetched
	// Technologies are the distinct labels found in the repository's manifests.
	Technologies []string
	Traits       classify.Traits
}

// LanguageSkill ranks a language by bytes of code.
type LanguageSkill struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
	Level int    `json:"level"`
}

// LanguagePresence ranks a language by the number of repositories using it.
type LanguagePresence struct {
	Name    string `json:"name"`
	Repos   int    `json:"repos"`
	Percent int    `json:"percent"`
}

// TechSkill ranks a technology by the number of repositories using it.
type TechSkill struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Stats is the stats endpoint payload.
type Stats struct {
	TotalRepos       int                `json:"totalRepos"`
	TotalStars       int                `json:"totalStars"`
	LanguageSkills   []LanguageSkill    `json:"languageSkills"`
	LanguagePresence []LanguagePresence `json:"languagePresence"`
	TechSkills       []TechSkill        `json:"techSkills"`
	APIRestCount     int                `json:"apiRestCount"`
	CRUDCount        int                `json:"crudCount"`
	FullstackCount   int                `json:"fullstackCount"`
}

// Aggregator accumulates repository samples. The zero value is ready to use.
type Aggregator struct {
	repos     int
	stars     int
	bytes     Tally
	presence  Tally
	techs     Tally
	api       int
	crud      int
	fullstack int
}

// Add accumulates one repository.
func (a *Aggregator) Add(s RepoSample) {
	a.repos++
	a.stars += s.Stars

	if s.Languages != nil {
		found := false
		for _, l := range s.Languages {
			if l.Bytes > 0 {
				a.bytes.Add(l.Name, l.Bytes)
				a.presence.Add(l.Name, 1)
				found = true
			}
		}
		if !found && s.Language != "" {
			a.presence.Add(s.Language, 1)
		}
	}

	seen := make(map[string]bool, len(s.Technologies))
	for _, t := range s.Technologies {
		if !seen[t] {
			seen[t] = true
			a.techs.Add(t, 1)
		}
	}

	if s.Traits.API {
		a.api++
	}
	if s.Traits.CRUD {
		a.crud++
	}
	if s.Traits.Fullstack {
		a.fullstack++
	}
}

// Repos returns the number of samples added.
func (a *Aggregator) Repos() int { return a.repos }

// Result computes the rankings.
func (a *Aggregator) Result() *Stats {
	denom := int64(max(a.repos, 1))

	out := &Stats{
		TotalRepos:       a.repos,
		TotalStars:       a.stars,
		LanguageSkills:   []LanguageSkill{},
		LanguagePresence: []LanguagePresence{},
		TechSkills:       []TechSkill{},
		APIRestCount:     a.api,
		CRUDCount:        a.crud,
		FullstackCount:   a.fullstack,
	}

	if total := a.bytes.Total(); total > 0 {
		for _, e := range a.bytes.Sorted() {
			if len(out.LanguageSkills) == TopN {
				break
			}
			out.LanguageSkills = append(out.LanguageSkills, LanguageSkill{
				Name:  e.Key,
				Bytes: e.Count,
				Level: Percent(e.Count, total),
			})
		}
	}

	for _, e := range a.presence.Sorted() {
		out.LanguagePresence = append(out.LanguagePresence, LanguagePresence{
			Name:    e.Key,
			Repos:   int(e.Count),
			Percent: Percent(e.Count, denom),
		})
	}

	for _, e := range a.techs.Sorted() {
		if len(out.TechSkills) == TopN {
			break
		}
		out.TechSkills = append(out.TechSkills, TechSkill{
			Name:  e.Key,
			Count: int(e.Count),
			Level: max(1, Percent(e.Count, denom)),
		})
	}

	return out
}
