package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore is a file-based snapshot store for the CLI.
// Snapshots are stored as JSON files, one directory per kind and username.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	keep    int
	now     func() time.Time
}

// NewFileStore creates a new file-based snapshot store.
// If baseDir is empty, defaults to ~/.local/share/ghfolio/snapshots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "ghfolio", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, keep: DefaultKeep, now: time.Now}, nil
}

func (s *FileStore) dir(kind Kind, username string) string {
	return filepath.Join(s.baseDir, string(kind), normalizeUser(username))
}

func (s *FileStore) Save(_ context.Context, kind Kind, username string, payload []byte) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.dir(kind, username)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := New(kind, username, payload, s.now())
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	// Names sort chronologically: nanosecond timestamp, then the ID.
	name := fmt.Sprintf("%020d-%s.json", snap.CreatedAt.UnixNano(), snap.ID)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		return nil, fmt.Errorf("write snapshot file: %w", err)
	}

	files, err := s.files(dir)
	if err != nil {
		return nil, err
	}
	for len(files) > s.keep {
		os.Remove(filepath.Join(dir, files[0]))
		files = files[1:]
	}
	return snap, nil
}

func (s *FileStore) Latest(ctx context.Context, kind Kind, username string) (*Snapshot, error) {
	list, err := s.List(ctx, kind, username, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (s *FileStore) List(_ context.Context, kind Kind, username string, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := s.dir(kind, username)
	files, err := s.files(dir)
	if err != nil {
		return nil, err
	}

	var out []*Snapshot
	for i := len(files) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(dir, files[i]))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		out = append(out, &snap)
	}
	return out, nil
}

// files returns snapshot file names in dir, oldest first.
func (s *FileStore) files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
