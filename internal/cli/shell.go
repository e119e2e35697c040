package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/reducer"
)

const historyName = "shell_history"

var shellOnly = []string{"ls", "search", "stats", "save", "export", "clear-all", "help", "exit", "quit"}

// shell is the line-mode front end. One session stays open for its lifetime
// so the autosave task keeps running between commands.
type shell struct {
	r       *runner
	sess    *app.Session
	out     io.Writer
	search  string
	confirm func(prompt string) bool
}

func (r *runner) doShell(ctx context.Context) int {
	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	sess.StartAutosave(ctx, r.cfg.AutosaveInterval)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	hist := filepath.Join(r.cfg.DataDir, historyName)
	if f, err := os.Open(hist); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
			return
		}
		if f, err := os.Create(hist); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	sh := &shell{r: r, sess: sess, out: r.out}
	sh.confirm = func(prompt string) bool {
		answer, err := ln.Prompt(prompt)
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	st := sess.State().Stats
	fmt.Fprintf(r.out, "todo shell (%d pending). Type 'help' for commands.\n", st.Pending)
	for {
		if ctx.Err() != nil {
			return 0
		}
		line, err := ln.Prompt("todo> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")
				return 0
			}
			r.fail("read input: " + err.Error())
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if sh.exec(line) {
			fmt.Fprintln(r.out, "Bye!")
			return 0
		}
	}
}

// exec runs one shell line and reports whether the shell should exit.
func (sh *shell) exec(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	words[0] = strings.ToLower(words[0])
	cmd, args := words[0], words[1:]
	r := sh.r

	switch cmd {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		sh.help()
	case "ls":
		sh.list(args)
	case "search":
		sh.search = strings.Join(args, " ")
		if sh.search == "" {
			fmt.Fprintln(sh.out, r.theme.Muted.Render("search cleared"))
		}
		sh.list(nil)
	case "stats":
		st := sh.sess.State().Stats
		fmt.Fprintf(sh.out, "total %d  completed %d  pending %d\n", st.Total, st.Completed, st.Pending)
	case "save":
		if err := sh.sess.ManualSave(); err != nil {
			r.fail("save: " + err.Error())
			return false
		}
		r.ok("manually saved")
	case "export":
		format := "json"
		if len(args) > 0 {
			format = args[0]
		}
		f, err := persist.ParseFormat(format)
		if err != nil {
			r.fail("export: " + err.Error())
			return false
		}
		path, err := sh.sess.Export(".", f)
		if err != nil {
			r.fail("export: " + err.Error())
			return false
		}
		r.ok("exported to " + path)
	case "clear-all":
		if sh.confirm == nil || !sh.confirm("Delete ALL todos? [y/N] ") {
			fmt.Fprintln(sh.out, r.theme.Muted.Render("cancelled"))
			return false
		}
		if _, err := sh.sess.ClearAll(); err != nil {
			r.fail("clear-all: " + err.Error())
			return false
		}
		r.ok("all todos deleted")
	default:
		a, err := ParseAction(words)
		if err != nil {
			r.fail(err.Error())
			return false
		}
		if msg, code := r.checkTarget(sh.sess.State(), a); code != 0 {
			r.fail(msg)
			return false
		}
		r.ok(describe(a, sh.sess.Dispatch(a)))
	}
	return false
}

func (sh *shell) list(args []string) {
	st := sh.sess.State()
	filter := st.Filter
	if len(args) > 0 {
		f, err := ParseFilter(args[0])
		if err != nil {
			sh.r.fail("ls: " + err.Error())
			return
		}
		filter = f
	}
	visible := reducer.Visible(st.Todos, filter, sh.search)
	t := sh.r.theme
	fmt.Fprintln(sh.out, t.StatsHeader(st.Stats))
	if len(visible) == 0 {
		fmt.Fprintln(sh.out, t.Muted.Render("no todos to display"))
		return
	}
	for _, td := range visible {
		fmt.Fprintln(sh.out, t.TodoLine(td, 80))
	}
}

func (sh *shell) help() {
	fmt.Fprint(sh.out, `Commands:
  add <text...>          Add a todo
  done <id>              Toggle a todo
  rm <id>                Remove a todo
  edit <id> <text...>    Replace a todo's text
  filter <name>          all, active or completed
  clear-completed        Remove completed todos
  ls [filter]            List todos
  search [term]          Set (or clear) the search term used by ls
  stats                  Show counts
  save                   Manual save snapshot
  export [json|yaml]     Write an export file here
  clear-all              Wipe storage
  exit                   Leave the shell
`)
}

func complete(line string) []string {
	lower := strings.ToLower(line)
	var out []string
	for _, c := range append(ActionVerbs(), shellOnly...) {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}
	return out
}
