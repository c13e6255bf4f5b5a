// Package main provides the run command for queryprof
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/queryprof/queryprof/internal/config"
	"github.com/queryprof/queryprof/internal/dbconn"
	"github.com/queryprof/queryprof/internal/debug"
	"github.com/queryprof/queryprof/pkg/profiler"
)

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	var (
		driver     string
		dsn        string
		dir        string
		pattern    string
		repeat     int
		warmUp     bool
		interleave bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run and time the queries in a directory",
		Long: `Run executes every query file in the directory the configured
number of times against the database and prints each query's average
duration and share of the total run time.

Settings come from .queryprof.json when present; flags override it.

Examples:
  # Time queries against an in-memory SQLite database
  queryprof run --driver sqlite --dsn :memory: --dir queries

  # Use the saved configuration, but with more repetitions
  queryprof run --repeat 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Flags override the configuration file; the flag default
			// fills any setting not present in either.
			if cmd.Flags().Changed("driver") || cfg.Driver == "" {
				cfg.Driver = driver
			}
			if cmd.Flags().Changed("dsn") || cfg.DSN == "" {
				cfg.DSN = dsn
			}
			if cmd.Flags().Changed("dir") || cfg.Directory == "" {
				cfg.Directory = dir
			}
			if cmd.Flags().Changed("pattern") || cfg.Pattern == "" {
				cfg.Pattern = pattern
			}
			if cmd.Flags().Changed("repeat") || cfg.Repeat == 0 {
				cfg.Repeat = repeat
			}
			if cmd.Flags().Changed("warmup") {
				cfg.WarmUp = warmUp
			}
			if cmd.Flags().Changed("interleave") {
				cfg.Interleave = interleave
			}

			return runTimer(cfg)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", "Database driver (mysql, pgx, postgres, sqlite)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Connection string for the database")
	cmd.Flags().StringVarP(&dir, "dir", "d", "queries", "Directory containing one SQL statement per file")
	cmd.Flags().StringVar(&pattern, "pattern", "*", "File name pattern to match within the directory")
	cmd.Flags().IntVarP(&repeat, "repeat", "r", 10, "Number of timed repetitions per query")
	cmd.Flags().BoolVar(&warmUp, "warmup", false, "Run every query once, untimed, before timing begins")
	cmd.Flags().BoolVar(&interleave, "interleave", false, "Rotate through the queries each repetition")

	return cmd
}

// loadConfig loads the configuration file, falling back to an empty
// config when none exists.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()

	if configPath != "" {
		return loader.LoadFromPath(configPath)
	}

	cfg, err := loader.Load()
	if errors.Is(err, os.ErrNotExist) {
		debug.Log("No configuration file found, using flags only")
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTimer opens the database and runs the profiler with the merged
// settings.
func runTimer(cfg *config.Config) error {
	if cfg.DSN == "" {
		return fmt.Errorf("a connection string is required (--dsn or %s)", config.ConfigFileName)
	}

	debug.LogSection("Timing Run")
	debug.Log("Driver: %s", cfg.Driver)
	debug.Log("Directory: %s", cfg.Directory)
	debug.Log("Repeat: %d", cfg.Repeat)

	db, err := dbconn.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			debug.LogError(err, "closing database")
		}
	}()

	_, err = profiler.TimeQueries(db, profiler.Options{
		Repeat:     cfg.Repeat,
		Directory:  cfg.Directory,
		Pattern:    cfg.Pattern,
		WarmUp:     cfg.WarmUp,
		Interleave: cfg.Interleave,
	})
	return err
}
