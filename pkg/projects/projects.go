// Package projects builds the project cards shown on the portfolio from
// GitHub repositories.
package projects

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/ghfolio/pkg/classify"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
)

// Defaults used by [Build] when [Options] leaves a field empty.
const (
	DefaultDescription = "Project built with a focus on quality and performance."
	DefaultLanguage    = "JavaScript"
	DefaultDateLayout  = "02/01/2006"
	MaxRepos           = 20
	maxTechnologies    = 8
	maxLanguages       = 4
)

// Project is one card of the projects endpoint.
type Project struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	GitHub       string   `json:"github"`
	Demo         string   `json:"demo"`
	Stars        int      `json:"stars"`
	Forks        int      `json:"forks"`
	Language     string   `json:"language"`
	Categories   []string `json:"categories"`
	Image        string   `json:"image"`
	LastUpdate   string   `json:"lastUpdate"`
	Size         int      `json:"size"`

	// UpdatedAt orders projects; it is not part of the payload.
	UpdatedAt time.Time `json:"-"`
}

// Options tunes the presentation of projects.
type Options struct {
	DefaultDescription string
	DateLayout         string
	Now                func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultDescription == "" {
		o.DefaultDescription = DefaultDescription
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Build turns a repository into a project card. languages is the ordered
// language breakdown and techs the normalized technologies found in its
// manifests.
func Build(repo github.Repo, languages []github.LanguageBytes, techs []string, owner string, opts Options) Project {
	opts = opts.withDefaults()

	langNames := make([]string, len(languages))
	for i, l := range languages {
		langNames[i] = l.Name
	}

	language := repo.Language
	if language == "" {
		language = DefaultLanguage
	}

	description := repo.Description
	if description == "" {
		description = opts.DefaultDescription
	}

	demo := repo.Homepage
	if demo == "" {
		demo = fmt.Sprintf("https://%s.github.io/%s", owner, repo.Name)
	}

	updated := repo.UpdatedAt
	if updated.IsZero() {
		updated = opts.Now()
	}

	categories := classify.Classify(classify.Signals{
		Name:        repo.Name,
		Description: repo.Description,
		Topics:      repo.Topics,
		Language:    repo.Language,
		Languages:   langNames,
	})

	return Project{
		ID:           repo.ID,
		Title:        Title(repo.Name),
		Description:  description,
		Technologies: technologies(techs, langNames, repo.Language),
		GitHub:       repo.HTMLURL,
		Demo:         demo,
		Stars:        repo.Stars,
		Forks:        repo.Forks,
		Language:     language,
		Categories:   classify.Strings(categories),
		Image:        Image(repo.Language, repo.Topics),
		LastUpdate:   updated.Format(opts.DateLayout),
		Size:         repo.Size,
		UpdatedAt:    updated,
	}
}

func technologies(techs, langs []string, language string) []string {
	switch {
	case len(techs) > 0:
		return clone(techs[:min(len(techs), maxTechnologies)])
	case len(langs) > 0:
		return clone(langs[:min(len(langs), maxLanguages)])
	case language != "":
		return []string{language}
	default:
		return []string{DefaultLanguage}
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}

var wordStart = regexp.MustCompile(`\b\w`)

// Title turns a repository name into a heading: hyphens become spaces and
// the first character of every word is upper-cased.
func Title(name string) string {
	return wordStart.ReplaceAllStringFunc(strings.ReplaceAll(name, "-", " "), strings.ToUpper)
}

// Score ranks a project: ten points per star plus the update day in
// milliseconds since the epoch.
func Score(p Project) float64 {
	day := time.Date(p.UpdatedAt.Year(), p.UpdatedAt.Month(), p.UpdatedAt.Day(), 0, 0, 0, 0, time.UTC)
	return float64(p.Stars)*10 + float64(day.UnixMilli())
}

// Sort orders projects by descending score. Equal scores keep their order.
func Sort(ps []Project) {
	sort.SliceStable(ps, func(i, j int) bool { return Score(ps[i]) > Score(ps[j]) })
}
