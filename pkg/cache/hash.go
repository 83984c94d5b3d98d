package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultKeyer is the standard [Keyer].
//
// Key formats:
//   - http:<namespace>:<key>
//   - report:<kind>:<username>:<sha256 of options>
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns the key for a raw API response.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// ReportKey returns the key for a computed report. Usernames are
// case-insensitive on GitHub, so they are lowercased.
func (DefaultKeyer) ReportKey(kind, username string, opts ReportKeyOpts) string {
	return hashKey(fmt.Sprintf("report:%s:%s", kind, strings.ToLower(username)), opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
