package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

var cargoSections = map[string]bool{
	"dependencies":       true,
	"dev-dependencies":   true,
	"build-dependencies": true,
}

// CargoToml parses Cargo.toml files. Crates from dependencies,
// dev-dependencies and build-dependencies are returned in file order.
// Renamed crates (package = "...") are reported under their real name.
type CargoToml struct{}

func (c *CargoToml) Type() string              { return "Cargo.toml" }
func (c *CargoToml) Supports(name string) bool { return name == "Cargo.toml" }

func (c *CargoToml) Parse(data []byte) (*Result, error) {
	var doc map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}

	var names orderedSet
	for _, key := range md.Keys() {
		if len(key) != 2 || !cargoSections[key[0]] {
			continue
		}
		names.add(cargoCrateName(doc, key[0], key[1]))
	}

	return &Result{Type: c.Type(), Dependencies: names.list()}, nil
}

func cargoCrateName(doc map[string]any, section, name string) string {
	table, _ := doc[section].(map[string]any)
	if spec, ok := table[name].(map[string]any); ok {
		if pkg, ok := spec["package"].(string); ok && pkg != "" {
			return pkg
		}
	}
	return name
}
