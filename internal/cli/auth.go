package cli

import (
	"fmt"
	"time"

	"github.com/idilsaglam/todoreducer/internal/auth"
)

const authUsage = "usage: todo auth <set [token]|clear|status>"

func (r *runner) doAuth(args []string) int {
	if len(args) == 0 {
		r.fail(authUsage)
		return 2
	}
	switch args[0] {
	case "set":
		return r.doAuthSet(args[1:])
	case "clear":
		return r.doAuthClear()
	case "status":
		return r.doAuthStatus()
	}
	r.fail(authUsage)
	return 2
}

func (r *runner) doAuthSet(args []string) int {
	var token string
	switch len(args) {
	case 0:
		fmt.Fprint(r.out, "Paste the API token: ")
		if _, err := fmt.Fscanln(r.opt.Stdin, &token); err != nil {
			r.fail("read token: " + err.Error())
			return 1
		}
	case 1:
		token = args[0]
	default:
		r.fail(authUsage)
		return 2
	}
	if err := auth.SetToken(r.cfg.DataDir, token); err != nil {
		r.fail("save token: " + err.Error())
		return 1
	}
	r.ok("token saved; `todo serve` will require it")
	return 0
}

func (r *runner) doAuthClear() int {
	ti, err := auth.GetToken(r.cfg.DataDir)
	if err != nil {
		r.fail("auth: " + err.Error() + "; removing the unreadable credentials file")
	}
	if ti != nil && ti.Source == "env" {
		r.ok("token is provided by " + auth.EnvToken + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(r.cfg.DataDir); err != nil {
		r.fail("clear token: " + err.Error())
		return 1
	}
	r.ok("token cleared; the API is open")
	return 0
}

func (r *runner) doAuthStatus() int {
	ti, err := auth.GetToken(r.cfg.DataDir)
	if err != nil {
		r.fail("auth: " + err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(r.out, r.theme.Muted.Render("no token configured, the API accepts any caller"))
		fmt.Fprintln(r.out, "Run: todo auth set")
		return 0
	}
	fmt.Fprintf(r.out, "source: %s\n", ti.Source)
	if !ti.CreatedAt.IsZero() {
		fmt.Fprintf(r.out, "saved: %s\n", ti.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(r.out, "env override: "+auth.EnvToken)
	return 0
}
