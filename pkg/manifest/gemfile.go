package manifest

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var gemPattern = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"]`)

// Gemfile parses Ruby Gemfiles.
type Gemfile struct{}

func (g *Gemfile) Type() string              { return "Gemfile" }
func (g *Gemfile) Supports(name string) bool { return name == "Gemfile" }

func (g *Gemfile) Parse(data []byte) (*Result, error) {
	var names orderedSet

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if match := gemPattern.FindStringSubmatch(line); len(match) > 1 {
			names.add(match[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{Type: g.Type(), Dependencies: names.list()}, nil
}
