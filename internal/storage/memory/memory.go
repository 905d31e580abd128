package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cashlens/internal/storage"
)

// Store is a process-local KV. It can be seeded from a directory holding
// one <key>.json file per key.
type Store struct {
	mu     sync.Mutex
	values map[string]string
	writes int
	// failWith, when set, makes every Set fail. Used to simulate a full disk.
	failWith error
}

var _ storage.KV = (*Store)(nil)

func New() *Store {
	return &Store{values: map[string]string{}}
}

// NewFromFiles seeds the store from base/<key>.json. Missing or unreadable
// files are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	entries, err := os.ReadDir(base)
	if err != nil {
		return s
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		s.values[strings.TrimSuffix(name, ".json")] = content
	}
	return s
}

// Get implements storage.KV
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements storage.KV
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many successful Set calls have been made.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWrites makes subsequent Set calls return err; nil restores normal
// behaviour.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}
