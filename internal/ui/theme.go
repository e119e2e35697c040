package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
type Theme struct {
	Name string
	Dark bool

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
}

// Theme names.
const (
	Light = "light"
	Dark  = "dark"
	Mono  = "mono"
)

var monoBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

// Named returns the theme called name; unknown names get the light theme.
func Named(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Dark:
		return Theme{
			Name: Dark, Dark: true,
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("84")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
			Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("237")),
			Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("60"),

			BoxUnchecked: "◻", BoxChecked: "◼",
			SymDone: "✔", SymPending: "•",
		}
	case Mono:
		plain := lipgloss.NewStyle()
		return Theme{
			Name:  Mono,
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain, Pending: plain,
			Selected: lipgloss.NewStyle().Reverse(true),
			Done:     plain,
			Help:     plain,

			Border:      monoBorder,
			BorderColor: lipgloss.NoColor{},

			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
		}
	default:
		return Theme{
			Name:     Light,
			Title:    lipgloss.NewStyle().Bold(true),
			Muted:    lipgloss.NewStyle().Faint(true),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
			Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:     lipgloss.NewStyle().Faint(true),

			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),

			BoxUnchecked: "☐", BoxChecked: "☑",
			SymDone: "✔", SymPending: "•",
		}
	}
}

// Provider hands the current theme to every view that holds it, so nested
// views never need the theme passed down to them.
type Provider struct {
	mu    sync.RWMutex
	theme Theme
}

func NewProvider(name string) *Provider {
	return &Provider{theme: Named(name)}
}

func (p *Provider) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

func (p *Provider) IsDark() bool {
	return p.Theme().Dark
}

// Set switches to the named theme.
func (p *Provider) Set(name string) Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = Named(name)
	return p.theme
}

// Toggle flips between light and dark. Mono toggles to light.
func (p *Provider) Toggle() Theme {
	next := Dark
	if p.IsDark() {
		next = Light
	}
	return p.Set(next)
}
