package app

import (
	"context"
	"io"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/reducer"
	"github.com/idilsaglam/todoreducer/internal/task"
)

// Session owns one live todo state. Dispatch is serialized: each action is
// reduced and mirrored to storage before the next one starts.
type Session struct {
	sync   *persist.Synchronizer
	log    *log.Logger
	closer io.Closer

	mu        sync.Mutex
	state     model.State
	lastSaved time.Time
	autosave  *task.Periodic
}

// NewSession wraps a synchronizer. The state is the empty default until Load
// is called. closer, if non-nil, is closed by Close.
func NewSession(s *persist.Synchronizer, logger *log.Logger, closer io.Closer) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		sync:   s,
		log:    logger,
		closer: closer,
		state:  model.Default(),
	}
}

// Load seeds the session from storage. Before Load, Dispatch works but
// nothing is written to the primary keys; a Dispatch issued during Load
// waits for the seed and is applied on top of it.
func (s *Session) Load() model.State {
	// s.mu spans Rehydrate so no Dispatch sees Ready before the seed lands.
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.sync.Rehydrate()
	if ok {
		s.state = reducer.Reduce(s.state, a)
	}
	return s.state.Clone()
}

// Phase reports where the synchronizer is in its startup.
func (s *Session) Phase() persist.Phase {
	return s.sync.Phase()
}

// Dispatch applies a and returns the new state.
func (s *Session) Dispatch(a reducer.Action) model.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = reducer.Reduce(prev, a)
	if changed(prev, s.state) && s.sync.Phase() == persist.Ready {
		s.sync.Mirror(s.state)
		s.lastSaved = time.Now()
	}
	return s.state.Clone()
}

// State returns a copy of the current state.
func (s *Session) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Visible is the display projection of the current state.
func (s *Session) Visible(search string) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reducer.Visible(s.state.Todos, s.state.Filter, search)
}

// LastSaved is when state was last written to the primary keys or the
// autosave key. Zero when nothing has been written yet.
func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Autosave writes one snapshot now. It reports false when the list is empty.
func (s *Session) Autosave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sync.Autosave(s.state.Todos) {
		return false
	}
	s.lastSaved = time.Now()
	return true
}

// StartAutosave snapshots the list every interval until ctx ends or
// StopAutosave/Close is called. Starting again replaces the running task.
func (s *Session) StartAutosave(ctx context.Context, interval time.Duration) {
	s.StopAutosave()
	p := task.Every(ctx, interval, func() {
		if s.Autosave() {
			s.log.Printf("autosaved todos")
		}
	})
	s.mu.Lock()
	s.autosave = p
	s.mu.Unlock()
}

// StopAutosave stops the autosave task if one is running.
func (s *Session) StopAutosave() {
	s.mu.Lock()
	p := s.autosave
	s.autosave = nil
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// ManualSave writes the current list to the manual-save key.
func (s *Session) ManualSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync.ManualSave(s.state.Todos)
}

// ClearAll wipes storage and resets the state to the empty default.
func (s *Session) ClearAll() (model.State, error) {
	if err := s.sync.ClearAll(); err != nil {
		return s.State(), err
	}
	return s.Dispatch(reducer.Reset()), nil
}

// Export writes the current list into dir and returns the file path.
func (s *Session) Export(dir string, f persist.Format) (string, error) {
	st := s.State()
	return persist.ExportFile(dir, st.Todos, time.Now(), f)
}

// Close stops background work and releases the store.
func (s *Session) Close() error {
	s.StopAutosave()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func changed(a, b model.State) bool {
	return a.NextID != b.NextID || a.Filter != b.Filter || !slices.Equal(a.Todos, b.Todos)
}
