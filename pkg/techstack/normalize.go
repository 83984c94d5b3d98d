package techstack

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// aliases maps lowercase package names to display labels.
var aliases = map[string]string{
	// front-end libraries
	"react":            "React",
	"react-dom":        "React",
	"react-router":     "React Router",
	"react-router-dom": "React Router",
	"framer-motion":    "Framer Motion",
	"lucide-react":     "Lucide",

	// build tooling
	"vite":                     "Vite",
	"@vitejs/plugin-react":     "Vite",
	"@vitejs/plugin-react-swc": "Vite",

	// css
	"tailwindcss":          "Tailwind CSS",
	"@tailwindcss/postcss": "Tailwind CSS",
	"postcss":              "PostCSS",
	"autoprefixer":         "Autoprefixer",

	// typescript and lint
	"typescript":                  "TypeScript",
	"@types/node":                 "TypeScript",
	"typescript-eslint":           "TypeScript",
	"@eslint/js":                  "ESLint",
	"eslint":                      "ESLint",
	"eslint-plugin-react-hooks":   "ESLint",
	"eslint-plugin-react-refresh": "ESLint",

	// serverless and GitHub tooling
	"@vercel/node": "Vercel Functions",
	"octokit":      "Octokit",

	// back-end and databases
	"express":      "Express",
	"fastify":      "Fastify",
	"koa":          "Koa",
	"nest":         "NestJS",
	"@nestjs/core": "NestJS",
	"mongoose":     "MongoDB",
	"mongodb":      "MongoDB",
	"prisma":       "Prisma",
	"axios":        "Axios",
	"prettier":     "Prettier",

	"node":    "Node.js",
	"node.js": "Node.js",
	"nodejs":  "Node.js",
}

// ignoredPrefixes are rejected before the alias table is consulted, so
// "prettier" and "@types/node" never produce a label.
var ignoredPrefixes = []string{
	"eslint-config",
	"eslint-plugin",
	"@eslint/",
	"@types/",
	"@testing-library/",
	"prettier",
	"vitest",
	"jest",
	"tsup",
	"rimraf",
}

var prefixRules = []struct {
	prefixes []string
	label    string
}{
	{[]string{"@types/", "typescript-eslint"}, "TypeScript"},
	{[]string{"eslint-", "@eslint/"}, "ESLint"},
	{[]string{"@tailwindcss"}, "Tailwind CSS"},
	{[]string{"@vitejs", "vite-plugin-"}, "Vite"},
}

// rejectedLabels are fallback labels too generic to show.
var rejectedLabels = map[string]bool{"Core": true, "Plugin": true, "Utils": true}

var (
	scopePrefix = regexp.MustCompile(`^@.*/`)
	separators  = strings.NewReplacer("-", " ", "_", " ")
)

// Normalize maps a dependency name to a technology label. It reports false
// when the name is ignored or too generic.
func Normalize(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}

	for _, p := range ignoredPrefixes {
		if strings.HasPrefix(n, p) {
			return "", false
		}
	}
	if label, ok := aliases[n]; ok {
		return label, true
	}
	for _, rule := range prefixRules {
		for _, p := range rule.prefixes {
			if strings.HasPrefix(n, p) {
				return rule.label, true
			}
		}
	}

	label := TitleWords(separators.Replace(scopePrefix.ReplaceAllString(n, "")))
	if label == "" || rejectedLabels[label] {
		return "", false
	}
	return label, true
}

// TitleWords upper-cases the first character of every space-separated word
// and collapses runs of spaces. A word starting with a digit is unchanged.
func TitleWords(s string) string {
	words := strings.Fields(s)
	upper := cases.Upper(language.Und)
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + w[size:]
	}
	return strings.Join(words, " ")
}

// NormalizeAll maps names through Normalize and returns the distinct labels
// in first-seen order.
func NormalizeAll(names []string) []string {
	var s Set
	for _, n := range names {
		if label, ok := Normalize(n); ok {
			s.Add(label)
		}
	}
	return s.Items()
}
