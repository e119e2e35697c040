package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todoreducer/internal/app"
	"github.com/idilsaglam/todoreducer/internal/auth"
	"github.com/idilsaglam/todoreducer/internal/httpapi"
	"github.com/idilsaglam/todoreducer/internal/tui"
	"github.com/idilsaglam/todoreducer/internal/ui"
)

const tuiLogName = "tui.log"

func (r *runner) doTUI(ctx context.Context) int {
	if !ui.IsTTY() {
		r.fail("tui: stdout is not a terminal (try `todo ls`)")
		return 2
	}
	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		r.fail("data dir: " + err.Error())
		return 1
	}
	// The alt screen owns stdout and stderr; logs go to a file instead.
	f, err := tea.LogToFile(filepath.Join(r.cfg.DataDir, tuiLogName), "todo")
	if err != nil {
		r.fail("log file: " + err.Error())
		return 1
	}
	defer f.Close()

	sess, err := app.Open(ctx, r.cfg, log.Default())
	if err != nil {
		r.fail("load: " + err.Error())
		return 1
	}
	defer sess.Close()

	err = tui.Run(ctx, sess, ui.NewProvider(r.cfg.Theme), tui.Options{
		AutosaveInterval: r.cfg.AutosaveInterval,
		SearchDebounce:   r.cfg.SearchDebounce,
		ExportDir:        ".",
	})
	if err != nil {
		r.fail("tui: " + err.Error())
		return 1
	}
	st := sess.State().Stats
	r.ok(fmt.Sprintf("%d todos, %d pending", st.Total, st.Pending))
	return 0
}

func (r *runner) doServe(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", r.cfg.Listen, "listen address")
	accessLog := fs.Bool("access-log", true, "log every request")
	if err := fs.Parse(args); err != nil {
		r.fail("serve: " + err.Error())
		return 2
	}

	token, err := auth.GetToken(r.cfg.DataDir)
	if err != nil {
		r.fail("auth: " + err.Error())
		return 1
	}

	sess, code := r.open(ctx)
	if code != 0 {
		return code
	}
	defer sess.Close()
	sess.StartAutosave(ctx, r.cfg.AutosaveInterval)

	if token == nil {
		r.log.Printf("no API token configured, accepting unauthenticated requests")
	}
	srv := httpapi.New(sess, httpapi.Options{
		Token:          token,
		Logger:         r.log,
		SearchDebounce: r.cfg.SearchDebounce,
		AccessLog:      *accessLog,
	})
	if err := srv.Serve(ctx, *addr); err != nil {
		r.fail("serve: " + err.Error())
		return 1
	}
	return 0
}
