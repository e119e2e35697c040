package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/idilsaglam/todoreducer/internal/model"
)

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t Theme) OK(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Success.Render(t.SymDone+" "+msg))
}

func (t Theme) Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, t.Error.Render("✖ "+msg))
}

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// PanelString frames lines in the theme's border.
func (t Theme) PanelString(lines []string) string {
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Panel draws a framed box.
func (t Theme) Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, t.PanelString(lines))
}

// StatsHeader is the "Todos ✔ 1 • 2 Total 3" line above a list.
func (t Theme) StatsHeader(st model.Stats) string {
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), st.Completed,
		t.Pending.Render(t.SymPending), st.Pending,
		t.Accent.Render("Total"), st.Total,
	)
}

// TodoLine renders one todo as "#id ☐ text", truncating long text.
func (t Theme) TodoLine(td model.Todo, maxText int) string {
	box, text := t.Muted.Render(t.BoxUnchecked), td.Text
	if maxText > 3 && len([]rune(text)) > maxText {
		text = string([]rune(text)[:maxText-3]) + "..."
	}
	if td.Completed {
		box, text = t.Success.Render(t.BoxChecked), t.Done.Render(text)
	}
	return fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("#%-3d", td.ID)), box, text)
}

// CreatedDate shortens an ISO timestamp to its date part for display.
func CreatedDate(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}
