package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/ui"
)

// todoItem adapts model.Todo to bubbles/list.Item
type todoItem struct{ model.Todo }

func (i todoItem) Title() string       { return i.Text }
func (i todoItem) Description() string { return i.CreatedAt }
func (i todoItem) FilterValue() string { return i.Text }

func toItems(todos []model.Todo) []list.Item {
	out := make([]list.Item, 0, len(todos))
	for _, td := range todos {
		out = append(out, todoItem{td})
	}
	return out
}

// itemDelegate renders one todo per line in the current theme.
type itemDelegate struct {
	themes *ui.Provider
}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	t := d.themes.Theme()
	maxText := m.Width() - 24
	line := t.TodoLine(it.Todo, maxText) + "  " + t.Muted.Render(ui.CreatedDate(it.CreatedAt))
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+line)
}
