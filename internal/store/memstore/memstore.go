// Package memstore is an in-memory store.KV, used in tests and for
// throwaway sessions.
package memstore

import (
	"maps"
	"sync"

	"github.com/idilsaglam/todoreducer/internal/store"
)

type Store struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool
}

// New returns a store seeded with a copy of initial.
func New(initial map[string]string) *Store {
	data := make(map[string]string, len(initial))
	maps.Copy(data, initial)
	return &Store{data: data}
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, store.ErrClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.data[key] = value
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	clear(s.data)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Snapshot returns a copy of the stored entries.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data)
}
