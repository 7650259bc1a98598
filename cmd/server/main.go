// Package main is the entry point for the shaker server.
//
// The binary has two modes. Normally it serves the handshake HTTP API.
// With --import (or SHAKER_IMPORT) it instead runs the one-time legacy
// backfill from a plain-text file of display names and exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/karhu/shaker/internal/config"
	"github.com/karhu/shaker/internal/importer"
	"github.com/karhu/shaker/internal/repository/sqlite"
	"github.com/karhu/shaker/internal/server"
	"github.com/karhu/shaker/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Environment (and .env) first; flags override per-invocation below.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:          "shaker",
		Short:        "Records handshakes and serves counts over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, logger)
		},
	}

	root.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "path to the SQLite database")
	root.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "address for the API to listen on")
	root.Flags().StringVarP(&cfg.Token, "token", "t", cfg.Token, "token required to make requests")
	root.Flags().StringVar(&cfg.ImportPath, "import", cfg.ImportPath, "file of line-separated display names to import, then exit")

	if err := root.Execute(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting shaker",
		slog.String("db", cfg.DBPath),
		slog.String("addr", cfg.Addr),
	)

	// The database file is created on first open, but its directory isn't.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	if cfg.ImportPath != "" {
		return runImport(cfg, logger)
	}

	srv, err := server.New(server.Config{
		Addr:   cfg.Addr,
		DBPath: cfg.DBPath,
		Token:  cfg.Token,
	}, logger)
	if err != nil {
		return err
	}

	return srv.Start()
}

// runImport performs the legacy backfill instead of serving HTTP.
func runImport(cfg config.Config, logger *slog.Logger) error {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	identity := service.NewIdentityService(db.Users(), logger)
	ledger := service.NewLedgerService(identity, db.Users(), db.Handshakes(), logger)

	return importer.New(ledger, logger).Run(context.Background(), cfg.ImportPath)
}
