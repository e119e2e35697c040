package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/reducer"
)

var (
	// ErrUsage marks malformed command input.
	ErrUsage = errors.New("usage")
	// ErrEmptyText rejects blank todo text before it reaches the reducer.
	ErrEmptyText = errors.New("empty text")
)

// verb maps one user command to exactly one reducer action.
type verb struct {
	usage string
	parse func(args []string) (reducer.Action, error)
}

var verbs = map[string]verb{
	"add": {"add <text...>", func(a []string) (reducer.Action, error) {
		text, err := joinText(a)
		if err != nil {
			return reducer.Action{}, err
		}
		return reducer.Add(text), nil
	}},
	"done": {"done <id>", func(a []string) (reducer.Action, error) {
		id, err := oneID(a)
		return reducer.Toggle(id), err
	}},
	"rm": {"rm <id>", func(a []string) (reducer.Action, error) {
		id, err := oneID(a)
		return reducer.Delete(id), err
	}},
	"edit": {"edit <id> <text...>", func(a []string) (reducer.Action, error) {
		if len(a) < 2 {
			return reducer.Action{}, ErrUsage
		}
		id, err := oneID(a[:1])
		if err != nil {
			return reducer.Action{}, err
		}
		text, err := joinText(a[1:])
		if err != nil {
			return reducer.Action{}, err
		}
		return reducer.Update(id, text), nil
	}},
	"filter": {"filter <all|active|completed>", func(a []string) (reducer.Action, error) {
		if len(a) != 1 {
			return reducer.Action{}, ErrUsage
		}
		f, err := ParseFilter(a[0])
		return reducer.SetFilter(f), err
	}},
	"clear-completed": {"clear-completed", func(a []string) (reducer.Action, error) {
		if len(a) != 0 {
			return reducer.Action{}, ErrUsage
		}
		return reducer.ClearCompleted(), nil
	}},
}

var aliases = map[string]string{
	"toggle": "done",
	"delete": "rm",
	"update": "edit",
}

// IsActionVerb reports whether name (or an alias) dispatches an action.
func IsActionVerb(name string) bool {
	_, ok := verbs[canonical(name)]
	return ok
}

// ActionVerbs lists the action verbs in sorted order.
func ActionVerbs() []string {
	out := make([]string, 0, len(verbs))
	for name := range verbs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseAction turns a command line (verb first) into its reducer action.
func ParseAction(words []string) (reducer.Action, error) {
	if len(words) == 0 {
		return reducer.Action{}, fmt.Errorf("%w: no command", ErrUsage)
	}
	name := canonical(words[0])
	v, ok := verbs[name]
	if !ok {
		return reducer.Action{}, fmt.Errorf("%w: unknown command %q", ErrUsage, words[0])
	}
	a, err := v.parse(words[1:])
	if err != nil {
		if errors.Is(err, ErrUsage) {
			return reducer.Action{}, fmt.Errorf("%w: todo %s", ErrUsage, v.usage)
		}
		return reducer.Action{}, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

// ParseFilter accepts the three filters in any case.
func ParseFilter(s string) (model.Filter, error) {
	f := model.Filter(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
	return f, nil
}

func canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

func oneID(a []string) (int, error) {
	if len(a) != 1 {
		return 0, ErrUsage
	}
	n, err := strconv.Atoi(strings.TrimPrefix(a[0], "#"))
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", a[0])
	}
	return n, nil
}

func joinText(a []string) (string, error) {
	text := strings.TrimSpace(strings.Join(a, " "))
	if len(a) == 0 {
		return "", ErrUsage
	}
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
