package manifest

import (
	"fmt"
	"path"
	"strings"

	errs "github.com/matzehuels/ghfolio/pkg/errors"
	"github.com/matzehuels/ghfolio/pkg/integrations/github"
)

// DefaultLimit is the maximum number of manifests read per repository.
const DefaultLimit = 25

// Parser reads dependency names from one manifest format.
type Parser interface {
	// Type returns the manifest type identifier (e.g., "package.json", "cargo").
	Type() string
	// Supports reports whether this parser handles the given base filename.
	Supports(filename string) bool
	// Parse extracts the declared dependencies from the file contents.
	Parse(data []byte) (*Result, error)
}

// Result holds the dependency data extracted from one manifest.
type Result struct {
	Path         string   `json:"path,omitempty"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies"`
	// NodeEngine is set for package.json files that declare engines.node or
	// depend on a Node.js server framework.
	NodeEngine bool `json:"node_engine,omitempty"`
}

var registry = []Parser{
	&PackageJSON{},
	&GoMod{},
	&Requirements{},
	&Pyproject{},
	&CargoToml{},
	&POM{},
	&Gemfile{},
	&Composer{},
}

// All returns every available parser.
func All() []Parser {
	return append([]Parser(nil), registry...)
}

// Default returns the parsers used when none are configured: package.json only.
func Default() []Parser {
	return []Parser{&PackageJSON{}}
}

// Types lists the type identifiers of every available parser.
func Types() []string {
	types := make([]string, len(registry))
	for i, p := range registry {
		types[i] = p.Type()
	}
	return types
}

// ByType returns the parsers named in types, in the given order.
// The identifier "all" selects every parser.
func ByType(types []string) ([]Parser, error) {
	if len(types) == 0 {
		return Default(), nil
	}
	var out []Parser
	seen := make(map[string]bool)
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		if t == "all" {
			return All(), nil
		}
		if err := errs.ValidateManifestFilename(t); err != nil {
			return nil, err
		}
		p := lookup(t)
		if p == nil {
			return nil, errs.New(errs.ErrCodeInvalidManifest, "unknown manifest type %q (available: %s)", t, strings.Join(Types(), ", "))
		}
		seen[t] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return Default(), nil
	}
	return out, nil
}

func lookup(t string) Parser {
	for _, p := range registry {
		if strings.EqualFold(p.Type(), t) {
			return p
		}
	}
	return nil
}

// Detect finds a parser that supports the base name of path.
func Detect(p string, parsers []Parser) (Parser, error) {
	name := path.Base(p)
	for _, parser := range parsers {
		if parser.Supports(name) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("unsupported manifest: %s", name)
}

// SelectPaths returns the blob paths a parser supports, skipping anything
// under node_modules/, in tree order and capped at limit. A limit of zero or
// less uses [DefaultLimit].
func SelectPaths(entries []github.TreeEntry, parsers []Parser, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var paths []string
	for _, e := range entries {
		if len(paths) == limit {
			break
		}
		if !e.IsBlob() || strings.Contains(e.Path, "node_modules/") {
			continue
		}
		if errs.ValidatePath(e.Path) != nil {
			continue
		}
		if _, err := Detect(e.Path, parsers); err == nil {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// orderedSet collects names once each, in first-seen order.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func (s *orderedSet) add(name string) {
	if name == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[name] {
		s.seen[name] = true
		s.items = append(s.items, name)
	}
}

func (s *orderedSet) list() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}
