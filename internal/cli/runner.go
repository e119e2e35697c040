package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/config"
	"github.com/idilsaglam/todoreducer/internal/model"
	"github.com/idilsaglam/todoreducer/internal/persist"
	"github.com/idilsaglam/todoreducer/internal/reducer"
	"github.com/idilsaglam/todoreducer/internal/ui"
)

// Options carry root flags and the streams commands talk to.
type Options struct {
	ConfigPath string
	Store      string // backend override
	DataDir    string
	Theme      string
	Group      bool // list grouped by pending/done

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type runner struct {
	opt   Options
	cfg   config.Config
	theme ui.Theme
	out   io.Writer
	err   io.Writer
	log   *log.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	r := &runner{opt: opt, out: opt.Stdout, err: opt.Stderr, theme: ui.Named(opt.Theme)}

	if len(args) == 0 {
		PrintHelp(r.out)
		return 2
	}
	cmd, a := args[0], args[1:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		PrintHelp(r.out)
		return 0
	}

	if code := r.configure(); code != 0 {
		return code
	}

	switch {
	case IsActionVerb(cmd):
		return r.doAction(ctx, args)
	case cmd == "ls":
		return r.doList(ctx, a)
	case cmd == "stats":
		return r.doStats(ctx)
	case cmd == "save":
		return r.doSave(ctx)
	case cmd == "export":
		return r.doExport(ctx, a)
	case cmd == "clear-all":
		return r.doClearAll(ctx, a)
	case cmd == "tui":
		return r.doTUI(ctx)
	case cmd == "shell":
		return r.doShell(ctx)
	case cmd == "serve":
		return r.doServe(ctx, a)
	case cmd == "auth":
		return r.doAuth(a)
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.err)
	PrintHelp(r.err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a todo list driven by a state reducer

Usage:
  todo [global flags] <subcommand> [args]

Subcommands:
  add <text...>             Add a new todo
  ls [--filter F] [--search S]
                            List todos (--group splits pending/done)
  done <id>                 Toggle completion of a todo
  rm <id>                   Remove a todo
  edit <id> <text...>       Replace the text of a todo
  filter <all|active|completed>
                            Set the saved list filter
  clear-completed           Remove all completed todos
  clear-all [--yes]         Wipe storage and start over
  save                      Write a manual save snapshot
  export [--out DIR] [--format json|yaml]
                            Write todos_<date>.json
  stats                     Print total/completed/pending
  tui                       Interactive list
  shell                     Line-mode prompt accepting the same commands
  serve [--addr HOST:PORT]  JSON HTTP API
  auth <set|clear|status>   Manage the HTTP API token

Global flags:
  --config PATH   config file (TOML, or JSON with comments)
  --store NAME    json | bolt | firestore | memory
  --data-dir DIR  where local stores and credentials live
  --theme NAME    light | dark | mono
  --group         group ls output by pending/done

Examples:
  todo add "Buy milk"
  todo ls --filter active
  todo done 2
  todo export --format yaml
`)
}

func (r *runner) ok(msg string)   { r.theme.OK(r.out, msg) }
func (r *runner) fail(msg string) { r.theme.Fail(r.err, msg) }

// configure loads config and applies root flag overrides.
func (r *runner) configure() int {
	cfg, err := config.Load(r.opt.ConfigPath)
	if err != nil {
		r.fail("config: " + err.Error())
		return 1
	}
	if r.opt.Store != "" {
		cfg.Store = strings.ToLower(r.opt.Store)
	}
	if r.opt.DataDir != "" {
		dir, err := config.ExpandDataDir(r.opt.DataDir)
		if err != nil {
			r.fail("data dir: " + err.Error())
			return 2
		}
		cfg.DataDir = dir
	}
	if r.opt.Theme != "" {
		cfg.Theme = r.opt.Theme
	}
	if err := cfg.Validate(); err != nil {
		r.fail("config: " + err.Error())
		return 2
	}
	r.cfg = cfg
	r.theme = ui.Named(cfg.Theme)
	r.log = log.New(r.err, "todo: ", 0)
	return 0
}

// open returns a loaded session.
func (r *runner) open(ctx context.Context) (*app.Session, int) {
	sess, err := app.Open(ctx, r.cfg, r.log)
	if err != nil {
		r.fail("load: " + err.Error())
		return nil, 1
	}
	sess.Load()
	return sess, 0
}

// -------------- subcommand impls ----------------

func (r *runner) doAction(ctx context.Context, args []string) int {
	a, err := ParseAction(args)
	if err != nil {
		r.fail(err.Error())
		return 2
	}

	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()

	if msg, code := r.checkTarget(sess.State(), a); code != 0 {
		r.fail(msg)
		fmt.Fprintln(r.err, r.theme.Muted.Render("Hint: run `todo ls` to see valid ids"))
		return code
	}

	st := sess.Dispatch(a)
	r.ok(describe(a, st))
	return 0
}

// checkTarget rejects ids that do not exist. The reducer would ignore them;
// the CLI tells the user instead.
func (r *runner) checkTarget(st model.State, a reducer.Action) (string, int) {
	switch a.Kind {
	case reducer.KindToggle, reducer.KindDelete, reducer.KindUpdate:
		if _, ok := st.Find(a.Payload.ID); !ok {
			return fmt.Sprintf("no todo with id %d", a.Payload.ID), 2
		}
	}
	return "", 0
}

func describe(a reducer.Action, st model.State) string {
	switch a.Kind {
	case reducer.KindAdd:
		return fmt.Sprintf("added #%d", st.NextID-1)
	case reducer.KindToggle:
		if td, ok := st.Find(a.Payload.ID); ok && td.Completed {
			return fmt.Sprintf("completed #%d", td.ID)
		}
		return fmt.Sprintf("reopened #%d", a.Payload.ID)
	case reducer.KindDelete:
		return fmt.Sprintf("removed #%d", a.Payload.ID)
	case reducer.KindUpdate:
		return fmt.Sprintf("updated #%d", a.Payload.ID)
	case reducer.KindSetFilter:
		return "filter set to " + string(st.Filter)
	case reducer.KindClearCompleted:
		return fmt.Sprintf("cleared completed, %d left", st.Stats.Total)
	}
	return "ok"
}

func (r *runner) doList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	filterFlag := fs.String("filter", "", "show all, active or completed (default: saved filter)")
	search := fs.StringP("search", "s", "", "case-insensitive text search")
	if err := fs.Parse(args); err != nil {
		r.fail("ls: " + err.Error())
		return 2
	}

	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	st := sess.State()

	filter := st.Filter
	if *filterFlag != "" {
		f, err := ParseFilter(*filterFlag)
		if err != nil {
			r.fail("ls: " + err.Error())
			return 2
		}
		filter = f
	}
	visible := reducer.Visible(st.Todos, filter, *search)

	t := r.theme
	var lines []string
	lines = append(lines, t.StatsHeader(st.Stats))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(st.Stats.Completed, st.Stats.Total, 28)))
	view := "Filter: " + string(filter)
	if *search != "" {
		view += "  Search: " + *search
	}
	lines = append(lines, t.Muted.Render(view))
	lines = append(lines, "")

	switch {
	case len(visible) == 0 && *search != "":
		lines = append(lines, t.Muted.Render("no todos to display"), t.Muted.Render("Try a different search term"))
	case len(visible) == 0:
		lines = append(lines, t.Muted.Render("no todos to display"), t.Muted.Render("Add some todos to get started!"))
	case r.opt.Group:
		lines = append(lines, r.groupLines(visible)...)
	default:
		lines = append(lines, r.flatLines(visible)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	t.Panel(r.out, lines)
	return 0
}

func (r *runner) doStats(ctx context.Context) int {
	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	st := sess.State().Stats
	fmt.Fprintf(r.out, "total %d  completed %d  pending %d\n", st.Total, st.Completed, st.Pending)
	return 0
}

func (r *runner) doSave(ctx context.Context) int {
	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	if err := sess.ManualSave(); err != nil {
		r.fail("save: " + err.Error())
		return 1
	}
	r.ok("manually saved")
	return 0
}

func (r *runner) doExport(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.StringP("out", "o", ".", "directory to write the export into")
	format := fs.StringP("format", "f", "json", "json or yaml")
	if err := fs.Parse(args); err != nil {
		r.fail("export: " + err.Error())
		return 2
	}
	f, err := persist.ParseFormat(*format)
	if err != nil {
		r.fail("export: " + err.Error())
		return 2
	}

	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	path, err := sess.Export(*out, f)
	if err != nil {
		r.fail("export: " + err.Error())
		return 1
	}
	r.ok("exported to " + path)
	return 0
}

func (r *runner) doClearAll(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("clear-all", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		r.fail("clear-all: " + err.Error())
		return 2
	}
	if !*yes && !r.confirm("Delete ALL todos? [y/N] ") {
		fmt.Fprintln(r.out, r.theme.Muted.Render("cancelled"))
		return 0
	}

	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	if _, err := sess.ClearAll(); err != nil {
		r.fail("clear-all: " + err.Error())
		return 1
	}
	r.ok("all todos deleted")
	return 0
}

func (r *runner) confirm(prompt string) bool {
	fmt.Fprint(r.out, prompt)
	var answer string
	if _, err := fmt.Fscanln(r.opt.Stdin, &answer); err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// -------------- rendering helpers --------------

func (r *runner) flatLines(todos []model.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		out = append(out, r.theme.TodoLine(td, 80)+"  "+r.theme.Muted.Render(ui.CreatedDate(td.CreatedAt)))
	}
	return out
}

func (r *runner) groupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	t := r.theme
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, r.flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, r.flatLines(done)...)
	}
	return lines
}
