package manifest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Composer parses composer.json files. Packages from require and
// require-dev are reported by the name part of vendor/name; platform
// requirements (php, ext-*, lib-*) are skipped.
type Composer struct{}

func (c *Composer) Type() string              { return "composer.json" }
func (c *Composer) Supports(name string) bool { return name == "composer.json" }

func (c *Composer) Parse(data []byte) (*Result, error) {
	var doc struct {
		Require    json.RawMessage `json:"require"`
		RequireDev json.RawMessage `json:"require-dev"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse composer.json: %w", err)
	}

	var names orderedSet
	for _, section := range []json.RawMessage{doc.Require, doc.RequireDev} {
		keys, err := objectKeys(section)
		if err != nil {
			return nil, fmt.Errorf("parse composer.json: %w", err)
		}
		for _, k := range keys {
			if isPlatformPackage(k) {
				continue
			}
			if i := strings.LastIndex(k, "/"); i >= 0 {
				k = k[i+1:]
			}
			names.add(k)
		}
	}

	return &Result{Type: c.Type(), Dependencies: names.list()}, nil
}

func isPlatformPackage(name string) bool {
	n := strings.ToLower(name)
	return n == "php" || n == "composer-plugin-api" || strings.HasPrefix(n, "ext-") || strings.HasPrefix(n, "lib-")
}
