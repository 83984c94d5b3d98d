package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// normalizePy applies PEP 503 style normalization.
func normalizePy(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// Requirements parses requirements.txt style files, including
// requirements-dev.txt and similar variants.
type Requirements struct{}

func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Parse(data []byte) (*Result, error) {
	var names orderedSet

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := depNameRE.FindStringSubmatch(line); len(m) > 1 {
			names.add(normalizePy(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{Type: r.Type(), Dependencies: names.list()}, nil
}

// Pyproject parses pyproject.toml files: PEP 621 [project] dependencies and
// optional-dependencies, and the Poetry dependency tables.
type Pyproject struct{}

func (p *Pyproject) Type() string              { return "pyproject.toml" }
func (p *Pyproject) Supports(name string) bool { return name == "pyproject.toml" }

func (p *Pyproject) Parse(data []byte) (*Result, error) {
	var doc pyprojectFile
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse pyproject.toml: %w", err)
	}

	var names orderedSet
	addSpec := func(spec string) {
		if m := depNameRE.FindStringSubmatch(strings.TrimSpace(spec)); len(m) > 1 {
			names.add(normalizePy(m[1]))
		}
	}

	for _, spec := range doc.Project.Dependencies {
		addSpec(spec)
	}
	for _, key := range md.Keys() {
		// project.optional-dependencies.<extra>
		if len(key) == 3 && key[0] == "project" && key[1] == "optional-dependencies" {
			for _, spec := range doc.Project.OptionalDependencies[key[2]] {
				addSpec(spec)
			}
		}
	}

	// Poetry tables keep their key order only through the metadata.
	for _, key := range md.Keys() {
		if name, ok := poetryDependency(key); ok && name != "python" {
			names.add(normalizePy(name))
		}
	}

	return &Result{Type: p.Type(), Dependencies: names.list()}, nil
}

// poetryDependency matches tool.poetry.dependencies.<name>,
// tool.poetry.dev-dependencies.<name> and
// tool.poetry.group.<group>.dependencies.<name>.
func poetryDependency(key toml.Key) (string, bool) {
	if len(key) < 4 || key[0] != "tool" || key[1] != "poetry" {
		return "", false
	}
	switch {
	case len(key) == 4 && (key[2] == "dependencies" || key[2] == "dev-dependencies"):
		return key[3], true
	case len(key) == 6 && key[2] == "group" && key[4] == "dependencies":
		return key[5], true
	}
	return "", false
}

type pyprojectFile struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}
