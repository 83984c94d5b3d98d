package manifest

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

// GoMod parses go.mod files. Direct requirements are reduced to the last
// element of the module path, without a major-version suffix, so
// github.com/go-chi/chi/v5 becomes "chi".
type GoMod struct{}

func (p *GoMod) Type() string              { return "go.mod" }
func (p *GoMod) Supports(name string) bool { return name == "go.mod" }

func (p *GoMod) Parse(data []byte) (*Result, error) {
	var names orderedSet
	inRequire := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "require (") || line == "require(" {
			inRequire = true
			continue
		}
		if inRequire && line == ")" {
			inRequire = false
			continue
		}

		if strings.HasPrefix(line, "require ") && !strings.Contains(line, "(") {
			line = strings.TrimPrefix(line, "require ")
		} else if !inRequire {
			continue
		}

		if mod := parseRequireLine(line); mod != "" {
			names.add(ModuleName(mod))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{Type: p.Type(), Dependencies: names.list()}, nil
}

func parseRequireLine(line string) string {
	if strings.Contains(line, "// indirect") {
		return ""
	}
	if idx := strings.Index(line, "//"); idx != -1 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) >= 1 {
		return fields[0]
	}
	return ""
}

var (
	majorSuffix  = regexp.MustCompile(`^v[0-9]+$`)
	gopkgVersion = regexp.MustCompile(`\.v[0-9]+$`)
)

// ModuleName returns the short name of a Go module path.
func ModuleName(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 && majorSuffix.MatchString(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return gopkgVersion.ReplaceAllString(parts[len(parts)-1], "")
}
