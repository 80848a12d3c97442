package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corpus over a read-only HTTP API",
		Long: `Serve exposes the stored corpus over a small JSON API:

  GET /health                 liveness and transcript count
  GET /api/transcripts        paginated transcript listing
  GET /api/transcript/:id     one transcript with segments (append .txt for plain text)
  GET /api/search             full-text search with filters
  GET /api/speakers           speakers ranked by total speaking time

The API is read-only; building the corpus happens through 'factbase run'.

Examples:
  # Serve on the default 0.0.0.0:5000
  factbase serve

  # Bind locally on another port
  factbase serve --host 127.0.0.1 --port 8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("host", "0.0.0.0", "Bind address for the API server")
	cmd.Flags().IntP("port", "p", 5000, "Port for the API server")
	addStorageFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	srv := server.New(store, cfg.Host, cfg.Port, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("received shutdown signal, draining...")
		if err := srv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
		return <-errCh
	}
}
