package classify

import (
	"slices"
	"strings"
)

var (
	apiKeywords = []string{
		"api", "rest", "restful", "endpoint", "endpoints", "microservice",
		"micro-service", "express", "nestjs", "swagger", "graphql",
	}
	crudKeywords = []string{
		"crud", "create read update delete", "painel", "painel admin", "dashboard",
		"admin", "gerenciamento", "gestao", "gestão", "manage", "management",
	}

	// The stats counters use narrower lists than Classify and only look at
	// the primary language.
	statsFrontendKeywords = []string{"frontend", "front-end", "ui", "ux", "react", "next", "angular", "svelte"}
	statsBackendKeywords  = []string{"backend", "back-end", "api", "server", "node", "express", "nest"}
)

// Traits are the per-repository counters shown on the stats cards.
type Traits struct {
	API       bool `json:"api"`
	CRUD      bool `json:"crud"`
	Fullstack bool `json:"fullstack"`
}

// DetectTraits evaluates the stats heuristics for one repository.
func DetectTraits(s Signals) Traits {
	text := s.Text()
	topics := s.lowerTopics()
	primary := strings.ToLower(s.Language)

	frontend := frontendLanguageHints[primary] || containsAny(text, statsFrontendKeywords)
	backend := backendLanguageHints[primary] || containsAny(text, statsBackendKeywords)

	return Traits{
		API:       containsAny(text, apiKeywords) || anyIn(topics, apiKeywords),
		CRUD:      containsAny(text, crudKeywords) || slices.Contains(topics, "crud"),
		Fullstack: frontend && backend,
	}
}
