package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pathfinderai/pathfinder/internal/bank"
	"github.com/pathfinderai/pathfinder/internal/config"
	"github.com/pathfinderai/pathfinder/internal/logger"
	"github.com/pathfinderai/pathfinder/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "Timed mock exams in the terminal",
	Long: `Pathfinder runs timed mock exams for CLAT, CUET, NEET and JEE in the terminal.
Results are scored with each exam's marking scheme and kept in a local history.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyDB, "", "Path to SQLite database file (overrides PATHFINDER_DB)")
	pf.String(config.KeyCatalog, "", "Directory of exam and bank YAML files layered over the built-in catalog")
	pf.String(config.KeyConfig, "", "Config file (default ./pathfinder.yaml or $XDG_CONFIG_HOME/pathfinder/pathfinder.yaml)")
	pf.String(config.KeyLogLevel, "info", "Log level: trace, debug, info, warn, error")
	pf.String(config.KeyLogFile, "", "Log file (default $XDG_STATE_HOME/pathfinder/pathfinder.log)")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(examsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what a command needs after flags are parsed: resolved config, a
// file logger, and lazily the store and catalog.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store

	closers []io.Closer
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd, os.Getenv)
	if err != nil {
		return nil, err
	}

	path := cfg.LogFile
	if path == "" {
		if path, err = logger.DefaultPath(); err != nil {
			return nil, err
		}
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, closers: []io.Closer{f}}
	e.log = logger.Setup(cfg.LogLevel, "json", f).With().Str("cmd", cmd.CommandPath()).Logger()
	if cfg.File != "" {
		e.log.Debug().Str("file", cfg.File).Msg("config loaded")
	}
	return e, nil
}

// openStore opens the database once per command.
func (e *env) openStore() (*store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	path, err := resolveDBPath(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e.log.Debug().Str("path", path).Msg("store opened")
	e.store = st
	e.closers = append(e.closers, st)
	return st, nil
}

func (e *env) catalog() (*bank.Catalog, error) {
	if e.cfg.Catalog != "" {
		c, err := bank.WithDir(e.cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", e.cfg.Catalog, err)
		}
		return c, nil
	}
	c, err := bank.Default()
	if err != nil {
		return nil, fmt.Errorf("load built-in catalog: %w", err)
	}
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// resolveDBPath returns the database path from --db / PATHFINDER_DB, then
// the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}
