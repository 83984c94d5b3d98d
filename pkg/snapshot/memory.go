package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	keep  int
	now   func() time.Time
	items map[string][]*Snapshot // newest last
}

// NewMemoryStore creates a store that retains keep snapshots per kind and
// username. keep <= 0 uses DefaultKeep.
func NewMemoryStore(keep int) *MemoryStore {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &MemoryStore{keep: keep, now: time.Now, items: make(map[string][]*Snapshot)}
}

func memKey(kind Kind, username string) string {
	return string(kind) + ":" + normalizeUser(username)
}

func (m *MemoryStore) Save(_ context.Context, kind Kind, username string, payload []byte) (*Snapshot, error) {
	snap := New(kind, username, payload, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(kind, username)
	list := append(m.items[key], snap)
	if len(list) > m.keep {
		list = list[len(list)-m.keep:]
	}
	m.items[key] = list
	return snap, nil
}

func (m *MemoryStore) Latest(_ context.Context, kind Kind, username string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.items[memKey(kind, username)]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[len(list)-1], nil
}

func (m *MemoryStore) List(_ context.Context, kind Kind, username string, limit int) ([]*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.items[memKey(kind, username)]
	out := make([]*Snapshot, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
