package reducer

import "github.com/idilsaglam/todoreducer/internal/model"

// Kind names a state transition. The string values are the wire names used
// by the HTTP API and the shell.
type Kind string

const (
	KindAdd            Kind = "add-todo"
	KindToggle         Kind = "toggle-todo"
	KindDelete         Kind = "delete-todo"
	KindUpdate         Kind = "update-todo"
	KindSetFilter      Kind = "set-filter"
	KindClearCompleted Kind = "clear-completed"
	KindLoad           Kind = "load-todos"
)

// Known reports whether Reduce has a transition for k.
func (k Kind) Known() bool {
	switch k {
	case KindAdd, KindToggle, KindDelete, KindUpdate, KindSetFilter, KindClearCompleted, KindLoad:
		return true
	}
	return false
}

// Action is one requested transition: a kind plus whichever payload fields
// that kind reads.
type Action struct {
	Kind    Kind    `json:"type"`
	Payload Payload `json:"payload"`
}

// Payload carries the union of all action arguments.
//
// For load-todos a nil Todos, nil NextID or empty Filter means the field was
// not supplied and the current value is kept.
type Payload struct {
	Text    string       `json:"text,omitempty"`
	ID      int          `json:"id,omitempty"`
	NewText string       `json:"newText,omitempty"`
	Filter  model.Filter `json:"filter,omitempty"`
	Todos   []model.Todo `json:"todos,omitempty"`
	NextID  *int         `json:"nextId,omitempty"`
}

func Add(text string) Action {
	return Action{Kind: KindAdd, Payload: Payload{Text: text}}
}

func Toggle(id int) Action {
	return Action{Kind: KindToggle, Payload: Payload{ID: id}}
}

func Delete(id int) Action {
	return Action{Kind: KindDelete, Payload: Payload{ID: id}}
}

func Update(id int, text string) Action {
	return Action{Kind: KindUpdate, Payload: Payload{ID: id, NewText: text}}
}

func SetFilter(f model.Filter) Action {
	return Action{Kind: KindSetFilter, Payload: Payload{Filter: f}}
}

func ClearCompleted() Action {
	return Action{Kind: KindClearCompleted}
}

// Load merges the supplied fields into the state.
func Load(todos []model.Todo, nextID *int, filter model.Filter) Action {
	return Action{Kind: KindLoad, Payload: Payload{Todos: todos, NextID: nextID, Filter: filter}}
}

// Reset is the load used by "clear all": no todos, next id 1, filter ALL.
func Reset() Action {
	one := 1
	return Load([]model.Todo{}, &one, model.FilterAll)
}
