package main

import (
	"os"

	"github.com/alecthomas/kong"

	"gagyebu/internal/cli"
	"gagyebu/internal/config"
	applog "gagyebu/internal/log"
)

// Globals override the environment configuration for a single run.
type Globals struct {
	Backend string `help:"Data backend, overrides DATA_BACKEND."`
	DB      string `help:"SQLite database path, overrides SQLITE_DB_PATH." name:"db" type:"path"`
	JSON    bool   `help:"Print results as JSON."`
}

var args struct {
	Globals
	Commands
}

func (g Globals) apply(cfg *config.Config) {
	if g.Backend != "" {
		cfg.DataBackend = g.Backend
	}
	if g.DB != "" {
		cfg.SQLiteDBPath = g.DB
	}
}

func main() {
	kctx := kong.Parse(&args,
		kong.Name("gagyebuctl"),
		kong.Description("Administer the gagyebu ledger."),
		kong.UsageOnError(),
	)

	cli.LoadEnvFile()
	cfg := config.Load()
	args.Globals.apply(cfg)

	level, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentCLI, Output: os.Stderr})
	applog.SetDefault(logger)
	kctx.FatalIfErrorf(cfg.Validate())

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.InitLedger(ctx, logger, cfg)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(&runtime{ctx: ctx, ledger: res.Ledger, out: os.Stdout, json: args.JSON})
	if cerr := res.Cleanup(); cerr != nil {
		logger.Warn("Backend cleanup failed", applog.FieldError, cerr)
	}
	if err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
