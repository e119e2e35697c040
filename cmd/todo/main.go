package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/todoreducer/internal/cli"
	"github.com/idilsaglam/todoreducer/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "config file (default ~/.config/todo/config.toml)")
	storeName := flag.String("store", "", "storage backend: json, bolt, firestore or memory")
	dataDir := flag.String("data-dir", "", "directory for local stores and credentials")
	theme := flag.String("theme", "", "light, dark or mono")
	groupPending := flag.Bool("group", false, "group output by pending/done")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the config")
	flag.CommandLine.SetInterspersed(false)
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand the remaining args to the CLI runner.
	code := cli.Run(ctx, flag.Args(), cli.Options{
		ConfigPath: *configPath,
		Store:      *storeName,
		DataDir:    *dataDir,
		Theme:      *theme,
		Group:      *groupPending,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
