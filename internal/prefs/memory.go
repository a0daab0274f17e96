package prefs

import (
	"context"
	"sync"
)

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
	writes int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[namespace][key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.values[namespace]
	if !ok {
		ns = make(map[string]string)
		s.values[namespace] = ns
	}
	ns[key] = value
	s.writes++
	return nil
}

func (s *MemoryStore) All(_ context.Context, namespace string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values[namespace]))
	for k, v := range s.values[namespace] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, namespace)
	s.writes++
	return nil
}

// Writes counts Set and Clear calls.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
