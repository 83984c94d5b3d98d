// Package classify assigns portfolio categories to repositories from their
// languages, topics, name and description.
//
// Matching is by lowercase substring over the combined text
// "name description topics...", so "api" also matches "rapid". The keyword
// lists are static.
package classify

import (
	"slices"
	"strings"
)

// Category is a portfolio section a repository is listed under.
type Category string

const (
	Mobile    Category = "mobile"
	Backend   Category = "backend"
	Frontend  Category = "frontend"
	Fullstack Category = "fullstack"
)

// Categories lists every category in output order.
var Categories = []Category{Mobile, Backend, Frontend, Fullstack}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

var (
	backendLanguageHints = set("python", "java", "go", "c#", "c++", "c", "rust", "php",
		"ruby", "kotlin", "scala", "shell", "dockerfile", "swift")
	frontendLanguageHints = set("javascript", "typescript", "html", "css", "vue",
		"svelte", "scss", "less")

	backendKeywords = []string{
		"backend", "back-end", "api", "rest", "graphql", "server", "service",
		"microservice", "micro-service", "node", "express", "nestjs", "database",
		"postgres", "mysql", "mongodb", "mongo", "firebase", "supabase", "prisma",
		"auth", "authentication", "authorization",
	}
	frontendKeywords = []string{
		"frontend", "front-end", "ui", "ux", "web", "interface", "react", "next",
		"nextjs", "next.js", "vue", "angular", "svelte", "tailwind", "chakra",
		"design system",
	}
	mobileKeywords = []string{"mobile", "android", "ios", "react-native", "react native", "flutter"}
)

// Signals are the repository attributes the heuristics look at.
type Signals struct {
	Name        string
	Description string
	Topics      []string
	Language    string   // primary language reported by GitHub
	Languages   []string // every language in the byte breakdown
}

// Text returns the lowercase "name description topics" haystack.
func (s Signals) Text() string {
	return strings.ToLower(s.Name + " " + s.Description + " " + strings.Join(s.Topics, " "))
}

func (s Signals) lowerTopics() []string {
	out := make([]string, len(s.Topics))
	for i, t := range s.Topics {
		out[i] = strings.ToLower(t)
	}
	return out
}

// Classify returns the categories of a repository in the order mobile,
// backend, frontend, fullstack. A repository matching nothing is frontend.
func Classify(s Signals) []Category {
	text := s.Text()
	topics := s.lowerTopics()
	primary := strings.ToLower(s.Language)

	has := make(map[Category]bool, len(Categories))

	if anyIn(topics, mobileKeywords) || containsAny(text, mobileKeywords) {
		has[Mobile] = true
	}
	if hasLanguageHint(primary, s.Languages, backendLanguageHints) ||
		anyIn(topics, backendKeywords) || containsAny(text, backendKeywords) {
		has[Backend] = true
	}
	if hasLanguageHint(primary, s.Languages, frontendLanguageHints) ||
		anyIn(topics, frontendKeywords) || containsAny(text, frontendKeywords) {
		has[Frontend] = true
	}
	if slices.Contains(topics, "fullstack") ||
		strings.Contains(text, "full stack") || strings.Contains(text, "fullstack") ||
		(has[Frontend] && has[Backend]) {
		has[Fullstack] = true
	}

	var out []Category
	for _, c := range Categories {
		if has[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []Category{Frontend}
	}
	return out
}

// Strings converts categories to their wire names.
func Strings(cs []Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func hasLanguageHint(primary string, langs []string, hints map[string]bool) bool {
	if hints[primary] {
		return true
	}
	for _, l := range langs {
		if hints[strings.ToLower(l)] {
			return true
		}
	}
	return false
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// anyIn reports whether any topic equals one of the keywords.
func anyIn(topics, keywords []string) bool {
	for _, t := range topics {
		if slices.Contains(keywords, t) {
			return true
		}
	}
	return false
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, i := range items {
		m[i] = true
	}
	return m
}
