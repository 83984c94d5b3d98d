package manifest

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// POM parses Maven pom.xml files and returns dependency artifactIds.
// Dependencies whose coordinates are unresolved ${properties} are skipped.
type POM struct{}

func (p *POM) Type() string              { return "pom.xml" }
func (p *POM) Supports(name string) bool { return name == "pom.xml" }

func (p *POM) Parse(data []byte) (*Result, error) {
	var pom pomProject
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("parse pom.xml: %w", err)
	}

	var names orderedSet
	for _, dep := range pom.Dependencies {
		if strings.HasPrefix(dep.GroupID, "${") || strings.HasPrefix(dep.ArtifactID, "${") {
			continue
		}
		names.add(strings.TrimSpace(dep.ArtifactID))
	}

	return &Result{Type: p.Type(), Dependencies: names.list()}, nil
}

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Scope      string `xml:"scope"`
}
