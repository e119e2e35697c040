// Package tui is the full-screen Bubble Tea front end over an app.Session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/reducer"
	"github.com/idilsaglam/todoreducer/internal/ui"
)

const (
	windowTitle    = "Todo App"
	noticeDuration = 2 * time.Second
	textLimit      = 200
)

// Options tune the timers and where exports land.
type Options struct {
	AutosaveInterval time.Duration
	SearchDebounce   time.Duration
	ExportDir        string
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeConfirm
)

type confirmKind int

const (
	confirmDelete confirmKind = iota
	confirmClearAll
)

type loadedMsg struct{ state model.State }

// searchMsg applies term once the debounce delay passes, unless a newer
// keystroke bumped the sequence.
type searchMsg struct {
	seq  int
	term string
}

type noticeDoneMsg struct{ seq int }

type autosaveMsg struct{}

// Model is the tea.Model for the todo list.
type Model struct {
	sess   *app.Session
	themes *ui.Provider
	opt    Options

	list    list.Model
	input   textinput.Model
	spin    spinner.Model
	loading bool
	mode    mode

	editID    int
	confirm   confirmKind
	confirmID int

	search    string // applied search term
	searchSeq int

	notice    string
	noticeSeq int
	errMsg    string

	width, height int
}

// New builds the model. The session is loaded by Init, not here.
func New(sess *app.Session, themes *ui.Provider, opt Options) Model {
	if opt.SearchDebounce <= 0 {
		opt.SearchDebounce = 500 * time.Millisecond
	}
	if opt.ExportDir == "" {
		opt.ExportDir = "."
	}

	l := list.New(nil, itemDelegate{themes: themes}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = themes.Theme().Title
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = func() []key.Binding { return shortKeys }
	l.AdditionalFullHelpKeys = func() []key.Binding { return fullKeys }

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = textLimit

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		sess:    sess,
		themes:  themes,
		opt:     opt,
		list:    l,
		input:   in,
		spin:    sp,
		loading: true,
		width:   80,
		height:  24,
	}
}

var (
	addKey     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey    = key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit"))
	toggleKey  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteKey  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterKeys = key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "all/active/done"))
	searchKey  = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	clearKey   = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done"))
	wipeKey    = key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all"))
	exportKey  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export"))
	saveKey    = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	themeKey   = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme"))
	quitKey    = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))

	shortKeys = []key.Binding{addKey, toggleKey, deleteKey, searchKey, quitKey}
	fullKeys  = []key.Binding{addKey, editKey, toggleKey, deleteKey, filterKeys, searchKey,
		clearKey, wipeKey, exportKey, saveKey, themeKey, quitKey}
)

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, sess *app.Session, themes *ui.Provider, opt Options) error {
	p := tea.NewProgram(New(sess, themes, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	sess := m.sess
	return tea.Batch(
		m.spin.Tick,
		tea.SetWindowTitle(windowTitle),
		func() tea.Msg { return loadedMsg{state: sess.Load()} },
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		return m, tea.Batch(m.refresh(), m.scheduleAutosave())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case searchMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.search = msg.term
		return m, m.refresh()

	case noticeDoneMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case autosaveMsg:
		if m.sess.Autosave() {
			return m, tea.Batch(m.flash("Autosaved"), m.scheduleAutosave())
		}
		return m, m.scheduleAutosave()

	case tea.KeyMsg:
		if m.loading {
			if key.Matches(msg, quitKey) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "What needs to be done?"
		return m, m.input.Focus()
	case "e", "enter":
		td, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = td.ID
		m.input.SetValue(td.Text)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit todo..."
		return m, m.input.Focus()
	case " ":
		if td, ok := m.selected(); ok {
			return m, m.dispatch(reducer.Toggle(td.ID))
		}
		return m, nil
	case "d":
		if td, ok := m.selected(); ok {
			m.mode = modeConfirm
			m.confirm = confirmDelete
			m.confirmID = td.ID
		}
		return m, nil
	case "1":
		return m, m.dispatch(reducer.SetFilter(model.FilterAll))
	case "2":
		return m, m.dispatch(reducer.SetFilter(model.FilterActive))
	case "3":
		return m, m.dispatch(reducer.SetFilter(model.FilterCompleted))
	case "/":
		m.mode = modeSearch
		m.input.SetValue(m.search)
		m.input.CursorEnd()
		m.input.Placeholder = "Search todos..."
		return m, m.input.Focus()
	case "c":
		return m, m.dispatch(reducer.ClearCompleted())
	case "X":
		m.mode = modeConfirm
		m.confirm = confirmClearAll
		return m, nil
	case "x":
		path, err := m.sess.Export(m.opt.ExportDir, persist.FormatJSON)
		if err != nil {
			m.errMsg = "export: " + err.Error()
			return m, nil
		}
		return m, m.flash("Exported to " + path)
	case "ctrl+s":
		if err := m.sess.ManualSave(); err != nil {
			m.errMsg = "save: " + err.Error()
			return m, nil
		}
		return m, m.flash("Saved!")
	case "t":
		t := m.themes.Toggle()
		m.list.Styles.Title = t.Title
		return m, m.refresh()
	case "esc":
		if m.search != "" {
			m.search = ""
			m.searchSeq++
			return m, m.refresh()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.errMsg = "Todo text cannot be empty"
			return m, nil
		}
		a := reducer.Add(text)
		if m.mode == modeEdit {
			a = reducer.Update(m.editID, text)
		}
		m.leaveInput()
		return m, m.dispatch(a)
	case "esc":
		m.leaveInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search = strings.TrimSpace(m.input.Value())
		m.searchSeq++
		m.leaveInput()
		return m, m.refresh()
	case "esc":
		m.search = ""
		m.searchSeq++
		m.leaveInput()
		return m, m.refresh()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.searchSeq++
	seq, term := m.searchSeq, m.input.Value()
	return m, tea.Batch(cmd, tea.Tick(m.opt.SearchDebounce, func(time.Time) tea.Msg {
		return searchMsg{seq: seq, term: term}
	}))
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	if s := strings.ToLower(msg.String()); s != "y" && s != "enter" {
		return m, nil
	}
	switch m.confirm {
	case confirmDelete:
		return m, m.dispatch(reducer.Delete(m.confirmID))
	case confirmClearAll:
		if _, err := m.sess.ClearAll(); err != nil {
			m.errMsg = "clear: " + err.Error()
			return m, nil
		}
		m.search = ""
		return m, tea.Batch(m.refresh(), m.flash("All todos deleted"))
	}
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.errMsg = ""
	m.input.SetValue("")
	m.input.Blur()
}

// dispatch applies a and flashes "Saved" when the change reached storage.
func (m *Model) dispatch(a reducer.Action) tea.Cmd {
	before := m.sess.LastSaved()
	m.sess.Dispatch(a)
	refresh := m.refresh()
	if saved := m.sess.LastSaved(); !saved.Equal(before) {
		return tea.Batch(refresh, m.flash("Saved"))
	}
	return refresh
}

// refresh rebuilds the list from the session and retitles the window.
func (m *Model) refresh() tea.Cmd {
	st := m.sess.State()
	idx := m.list.Index()
	items := toItems(reducer.Visible(st.Todos, st.Filter, m.search))
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.list.Title = m.themes.Theme().StatsHeader(st.Stats)
	return tea.SetWindowTitle(fmt.Sprintf("%s (%d pending)", windowTitle, st.Stats.Pending))
}

func (m *Model) flash(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeDoneMsg{seq: seq} })
}

func (m Model) scheduleAutosave() tea.Cmd {
	if m.opt.AutosaveInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opt.AutosaveInterval, func(time.Time) tea.Msg { return autosaveMsg{} })
}

func (m *Model) resize() {
	h := m.height - 8
	if m.mode != modeList {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	return it.Todo, ok
}

func (m Model) View() string {
	t := m.themes.Theme()
	if m.loading {
		return t.PanelString([]string{m.spin.View() + " Loading todos..."})
	}
	m.resize()

	st := m.sess.State()
	var b strings.Builder
	if len(m.list.Items()) == 0 {
		b.WriteString(m.list.Title + "\n\n")
		b.WriteString(t.Muted.Render("no todos to display") + "\n")
		if m.search != "" {
			b.WriteString(t.Muted.Render("Try a different search term"))
		} else {
			b.WriteString(t.Muted.Render("Add some todos to get started!"))
		}
	} else {
		b.WriteString(m.list.View())
	}

	status := t.Muted.Render("Filter: " + string(st.Filter))
	if m.search != "" {
		status += t.Muted.Render("  Search: " + m.search)
	}
	if saved := m.sess.LastSaved(); !saved.IsZero() {
		status += t.Muted.Render("  Last saved: " + saved.Format("15:04:05"))
	}
	b.WriteString("\n" + status)
	if m.notice != "" {
		b.WriteString("\n" + t.Success.Render(t.SymDone+" "+m.notice))
	}
	if m.errMsg != "" && m.mode == modeList {
		b.WriteString("\n" + t.Error.Render(m.errMsg))
	}

	switch m.mode {
	case modeAdd, modeEdit, modeSearch:
		title := map[mode]string{modeAdd: "Add todo", modeEdit: "Edit todo", modeSearch: "Search"}[m.mode]
		if m.errMsg != "" {
			title += "  " + t.Error.Render(m.errMsg)
		}
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		b.WriteString("\n" + bar.Render(title+"\n"+m.input.View()))
	case modeConfirm:
		prompt := fmt.Sprintf("Delete todo #%d? (y/N)", m.confirmID)
		if m.confirm == confirmClearAll {
			prompt = "Delete ALL todos? This cannot be undone. (y/N)"
		}
		b.WriteString("\n" + t.Error.Render(prompt))
	}
	return t.PanelString([]string{b.String()})
}
