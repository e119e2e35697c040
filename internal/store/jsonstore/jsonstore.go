package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/idilsaglam/todoreducer/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every write rewrites the whole file through a temp file + rename.

const dataFileName = "todos.json"

// DefaultPath returns the data file inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, dataFileName)
}

type Store struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	closed bool
}

// Open reads the file at path. A missing file is an empty store. A file
// that is not a JSON object is renamed to <path>.corrupt-<unix> and the store
// starts empty; logger (log.Default when nil) records where it went.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{path: path, data: map[string]string{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		s.data = map[string]string{}
		aside := CorruptPath(path, time.Now())
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, fmt.Errorf("move corrupt file aside: %w", rerr)
		}
		logger.Printf("error loading %s: json unmarshal: %v (moved to %s)", path, err, aside)
	}
	return s, nil
}

// CorruptPath is where Open moves an unreadable data file.
func CorruptPath(path string, now time.Time) string {
	return fmt.Sprintf("%s.corrupt-%d", path, now.Unix())
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

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
	return s.mutate(func(m map[string]string) { m[key] = value })
}

func (s *Store) Remove(key string) error {
	return s.mutate(func(m map[string]string) { delete(m, key) })
}

func (s *Store) Clear() error {
	return s.mutate(func(m map[string]string) { clear(m) })
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// mutate applies fn to a copy and only swaps it in once the file is written.
func (s *Store) mutate(fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	next := maps.Clone(s.data)
	fn(next)
	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
