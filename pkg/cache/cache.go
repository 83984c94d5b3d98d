// Package cache provides byte-oriented caching backends shared by the GitHub
// client and the portfolio service.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON files under the XDG cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that raw GitHub responses and computed
// reports never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. The bool reports a hit; expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the different kinds of cached data.
type Keyer interface {
	// HTTPKey returns the key for a raw API response.
	HTTPKey(namespace, key string) string
	// ReportKey returns the key for a computed report (stats or projects).
	ReportKey(kind, username string, opts ReportKeyOpts) string
}

// ReportKeyOpts holds the collection settings that change a report's content.
// Reports computed with different settings are cached separately.
type ReportKeyOpts struct {
	MaxProjects  int      `json:"max_projects,omitempty"`
	MaxManifests int      `json:"max_manifests,omitempty"`
	Manifests    []string `json:"manifests,omitempty"`
}
