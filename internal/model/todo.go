package model

import "slices"

// Todo is the domain model for a todo entry.
// CreatedAt is an ISO-8601 string set once at creation.
type Todo struct {
	ID        int    `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

// Filter selects which todos the list view shows.
type Filter string

const (
	FilterAll       Filter = "ALL"
	FilterActive    Filter = "ACTIVE"
	FilterCompleted Filter = "COMPLETED"
)

// Valid reports whether f is one of the three known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Stats are derived from the todo list and never set on their own.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// State is everything the reducer owns.
type State struct {
	Todos  []Todo `json:"todos"`
	Filter Filter `json:"filter"`
	NextID int    `json:"nextId"`
	Stats  Stats  `json:"stats"`
}

// Default is the empty state a fresh install starts from.
func Default() State {
	return State{
		Todos:  []Todo{},
		Filter: FilterAll,
		NextID: 1,
	}
}

// Clone returns a copy whose todo slice does not alias s.
func (s State) Clone() State {
	s.Todos = slices.Clone(s.Todos)
	if s.Todos == nil {
		s.Todos = []Todo{}
	}
	return s
}

// Find returns the todo with the given id.
func (s State) Find(id int) (Todo, bool) {
	for _, t := range s.Todos {
		if t.ID == id {
			return t, true
		}
	}
	return Todo{}, false
}

// MaxID returns the largest id in todos, or 0 when empty.
func MaxID(todos []Todo) int {
	maxID := 0
	for _, t := range todos {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID
}
