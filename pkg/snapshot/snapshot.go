// Package snapshot keeps the last successful reports so the server can answer
// with stale data when GitHub is unreachable or rate limited.
//
// A snapshot is keyed by report kind and username. Three backends are
// provided:
//   - [MemoryStore]: process-local, the default for the server
//   - [FileStore]: JSON files under the user's data directory, used by the CLI
//   - [MongoStore]: a MongoDB collection shared by several instances
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no snapshot exists for a kind and username.
var ErrNotFound = errors.New("snapshot not found")

// Kind names the report a snapshot holds.
type Kind string

const (
	KindStats    Kind = "stats"
	KindProjects Kind = "projects"
)

// DefaultKeep is how many snapshots per kind and username a store retains.
const DefaultKeep = 10

// Snapshot is a stored report.
type Snapshot struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Username  string          `json:"username"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Age returns how long ago the snapshot was taken.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Decode unmarshals the payload into v.
func (s *Snapshot) Decode(v any) error {
	return json.Unmarshal(s.Payload, v)
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save stores payload as the newest snapshot of kind for username.
	Save(ctx context.Context, kind Kind, username string, payload []byte) (*Snapshot, error)

	// Latest returns the newest snapshot, or ErrNotFound.
	Latest(ctx context.Context, kind Kind, username string) (*Snapshot, error)

	// List returns up to limit snapshots, newest first. A limit <= 0 returns all.
	List(ctx context.Context, kind Kind, username string, limit int) ([]*Snapshot, error)

	Close() error
}

// New builds a snapshot with a fresh ID. Usernames are case-insensitive on
// GitHub and are stored lowercase.
func New(kind Kind, username string, payload []byte, now time.Time) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		Kind:      kind,
		Username:  normalizeUser(username),
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: now.UTC(),
	}
}

func normalizeUser(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
