// Package persist mirrors todo state into a store.KV and rebuilds it at
// startup.
//
// Writes are fire-and-forget: storage errors are logged and never reach the
// reducer. The primary keys are only written once the initial read has
// finished, so an in-memory default can never overwrite persisted data that
// has not been read yet.
package persist

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/reducer"
	"github.com/idilsaglam/todoreducer/internal/store"
)

// Persisted keys.
const (
	KeyTodos      = "todos"
	KeyNextID     = "nextId"
	KeyFilter     = "filter"
	KeyAutosave   = "todos_autosave"
	KeyManualSave = "todos_manual_save"
)

// Phase is the synchronizer lifecycle: Uninitialized -> Loading -> Ready.
type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Ready
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type Synchronizer struct {
	kv  store.KV
	log *log.Logger

	mu    sync.Mutex
	phase Phase
}

// New returns an Uninitialized synchronizer. A nil logger uses log.Default.
func New(kv store.KV, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synchronizer{kv: kv, log: logger}
}

func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Synchronizer) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Rehydrate reads the persisted todos, nextId and filter. It returns the
// load-todos action to seed the reducer with, or ok=false when nothing usable
// was stored. Malformed data is logged and treated as absent. The
// synchronizer is Ready when Rehydrate returns, whatever the outcome.
func (s *Synchronizer) Rehydrate() (a reducer.Action, ok bool) {
	s.setPhase(Loading)
	defer s.setPhase(Ready)

	raw, found, err := s.kv.Get(KeyTodos)
	if err != nil {
		s.log.Printf("error loading todos: %v", err)
		return reducer.Action{}, false
	}
	if !found {
		return reducer.Action{}, false
	}

	var todos []model.Todo
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		s.log.Printf("error loading todos: %v", err)
		return reducer.Action{}, false
	}
	if todos == nil {
		todos = []model.Todo{}
	}

	nextID := s.persistedNextID(todos)

	filter := model.FilterAll
	if f, found, err := s.kv.Get(KeyFilter); err != nil {
		s.log.Printf("error loading filter: %v", err)
	} else if found && f != "" {
		filter = model.Filter(f)
	}

	return reducer.Load(todos, &nextID, filter), true
}

// persistedNextID returns the stored nextId, or max(id)+1 when it is missing
// or unreadable.
func (s *Synchronizer) persistedNextID(todos []model.Todo) int {
	derived := model.MaxID(todos) + 1
	raw, found, err := s.kv.Get(KeyNextID)
	if err != nil {
		s.log.Printf("error loading nextId: %v", err)
		return derived
	}
	if !found {
		return derived
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.log.Printf("ignoring stored nextId %q: %v", raw, err)
		return derived
	}
	return n
}

// Mirror writes todos, nextId and filter. It does nothing until the
// synchronizer is Ready.
func (s *Synchronizer) Mirror(st model.State) {
	if s.Phase() != Ready {
		return
	}
	b, err := json.Marshal(nonNil(st.Todos))
	if err != nil {
		s.log.Printf("error encoding todos: %v", err)
		return
	}
	s.set(KeyTodos, string(b))
	s.set(KeyNextID, strconv.Itoa(st.NextID))
	s.set(KeyFilter, string(st.Filter))
}

// Autosave snapshots todos under KeyAutosave. An empty list is skipped and
// reported as not saved.
func (s *Synchronizer) Autosave(todos []model.Todo) bool {
	if len(todos) == 0 {
		return false
	}
	b, err := json.Marshal(todos)
	if err != nil {
		s.log.Printf("error encoding autosave: %v", err)
		return false
	}
	return s.set(KeyAutosave, string(b))
}

// ManualSave snapshots todos under KeyManualSave. Unlike the automatic
// writes, the caller hears about failures.
func (s *Synchronizer) ManualSave(todos []model.Todo) error {
	b, err := json.Marshal(nonNil(todos))
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := s.kv.Set(KeyManualSave, string(b)); err != nil {
		return fmt.Errorf("manual save: %w", err)
	}
	return nil
}

// ClearAll wipes every persisted key, snapshots included.
func (s *Synchronizer) ClearAll() error {
	if err := s.kv.Clear(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}

func (s *Synchronizer) set(key, value string) bool {
	if err := s.kv.Set(key, value); err != nil {
		s.log.Printf("error saving %s: %v", key, err)
		return false
	}
	return true
}

func nonNil(todos []model.Todo) []model.Todo {
	if todos == nil {
		return []model.Todo{}
	}
	return todos
}
