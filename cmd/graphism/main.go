package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nvandessel/graphism/internal/config"
	"github.com/nvandessel/graphism/internal/logging"
	"github.com/nvandessel/graphism/internal/store"
	"github.com/spf13/cobra"
)

// Set by the release build via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "graphism",
		Short: "Graphism - SIS contagion over weighted graphs",
		Long: `graphism simulates susceptible-infected-susceptible spreading over
graphs built from edge lists.

Each tick every infected node tries to infect its neighbours, then every
infected node may recover. Edge lists can be read from CSV, TSV, JSON,
JSONL, YAML or TOML files, generated, or saved in a local SQLite store.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.graphism/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug or trace")
	rootCmd.PersistentFlags().String("db", "", "Edge store database (default ~/.graphism/graphism.db)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newStatsCmd(),
		newSnapshotCmd(),
		newImportCmd(),
		newGraphsCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// loadSettings reads the config named by --config (or the default
// location), then applies --log-level and --db on top.
func loadSettings(cmd *cobra.Command) (*config.GraphismConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger logs to the command's stderr so stdout stays clean for
// results and the MCP protocol.
func newLogger(cmd *cobra.Command, cfg *config.GraphismConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// openStore opens the SQLite edge store named by the config.
func openStore(cfg *config.GraphismConfig) (*store.SQLiteEdgeStore, error) {
	path := cfg.Store.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	es, err := store.NewSQLiteEdgeStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge store: %w", err)
	}
	return es, nil
}

// signalContext returns a context that is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}
