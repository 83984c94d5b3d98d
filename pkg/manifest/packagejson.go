package manifest

import (
	"encoding/json"
	"fmt"
)

// nodeServerDeps mark a package.json as a Node.js project even without engines.node.
var nodeServerDeps = []string{"express", "fastify", "koa", "@nestjs/core"}

// PackageJSON parses package.json files. Dependency sections are merged in
// the order dependencies, devDependencies, peerDependencies,
// optionalDependencies; a name keeps the position of its first appearance.
type PackageJSON struct{}

func (p *PackageJSON) Type() string              { return "package.json" }
func (p *PackageJSON) Supports(name string) bool { return name == "package.json" }

func (p *PackageJSON) Parse(data []byte) (*Result, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse package.json: %w", err)
	}

	var names orderedSet
	for _, section := range []json.RawMessage{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies, pkg.OptionalDependencies} {
		keys, err := objectKeys(section)
		if err != nil {
			return nil, fmt.Errorf("parse package.json: %w", err)
		}
		for _, k := range keys {
			names.add(k)
		}
	}

	res := &Result{Type: p.Type(), Dependencies: names.list()}
	res.NodeEngine = pkg.Engines.declaresNode()
	for _, d := range nodeServerDeps {
		if names.seen[d] {
			res.NodeEngine = true
		}
	}
	return res, nil
}

type packageFile struct {
	Name                 string          `json:"name"`
	Dependencies         json.RawMessage `json:"dependencies"`
	DevDependencies      json.RawMessage `json:"devDependencies"`
	PeerDependencies     json.RawMessage `json:"peerDependencies"`
	OptionalDependencies json.RawMessage `json:"optionalDependencies"`
	Engines              engines         `json:"engines"`
}

// engines tolerates the odd shapes found in the wild (arrays, strings).
type engines map[string]any

func (e *engines) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if json.Unmarshal(data, &m) == nil {
		*e = m
	}
	return nil
}

func (e engines) declaresNode() bool {
	switch v := e["node"].(type) {
	case string:
		return v != ""
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}
