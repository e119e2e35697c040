// Package reducer holds the todo state transitions. Reduce is pure: it never
// mutates its input and never fails.
package reducer

import (
	"slices"
	"time"

	"github.com/idilsaglam/todoreducer/internal/model"
)

// ISOLayout matches the millisecond ISO-8601 form used for CreatedAt.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

var now = time.Now

// Reduce returns the state that follows s after a. Unknown kinds and
// references to missing ids return s unchanged.
func Reduce(s model.State, a Action) model.State {
	switch a.Kind {
	case KindAdd:
		// A zero State behaves like model.Default.
		id := max(s.NextID, model.MaxID(s.Todos)+1)
		todo := model.Todo{
			ID:        id,
			Text:      a.Payload.Text,
			CreatedAt: now().UTC().Format(ISOLayout),
		}
		s.NextID = id + 1
		return withTodos(s, append(slices.Clip(s.Todos), todo))

	case KindToggle:
		i := indexOf(s.Todos, a.Payload.ID)
		if i < 0 {
			return s
		}
		todos := slices.Clone(s.Todos)
		todos[i].Completed = !todos[i].Completed
		return withTodos(s, todos)

	case KindDelete:
		i := indexOf(s.Todos, a.Payload.ID)
		if i < 0 {
			return s
		}
		return withTodos(s, slices.Delete(slices.Clone(s.Todos), i, i+1))

	case KindUpdate:
		i := indexOf(s.Todos, a.Payload.ID)
		if i < 0 {
			return s
		}
		todos := slices.Clone(s.Todos)
		todos[i].Text = a.Payload.NewText
		return withTodos(s, todos)

	case KindSetFilter:
		s.Filter = a.Payload.Filter
		return s

	case KindClearCompleted:
		todos := slices.DeleteFunc(slices.Clone(s.Todos), func(t model.Todo) bool { return t.Completed })
		return withTodos(s, todos)

	case KindLoad:
		p := a.Payload
		if p.Todos != nil {
			s.Todos = uniqueIDs(p.Todos)
		}
		if p.NextID != nil {
			s.NextID = *p.NextID
		}
		if p.Filter != "" {
			s.Filter = p.Filter
		}
		if floor := model.MaxID(s.Todos) + 1; s.NextID < floor {
			s.NextID = floor
		}
		return withTodos(s, s.Todos)
	}
	return s
}

func withTodos(s model.State, todos []model.Todo) model.State {
	if todos == nil {
		todos = []model.Todo{}
	}
	s.Todos = todos
	s.Stats = Calculate(todos)
	return s
}

func indexOf(todos []model.Todo, id int) int {
	return slices.IndexFunc(todos, func(t model.Todo) bool { return t.ID == id })
}

// uniqueIDs copies todos, keeping the first todo for each id.
func uniqueIDs(todos []model.Todo) []model.Todo {
	seen := make(map[int]struct{}, len(todos))
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
