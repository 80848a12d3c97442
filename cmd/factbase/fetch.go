package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/factbase/factbase/internal/config"
	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/fetch"
	"github.com/factbase/factbase/internal/ledger"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and parse the discovered transcripts",
		Long: `Fetch downloads every transcript URL recorded in the ledger, parses each
page into timed, speaker-attributed segments, and stores the result in the
SQLite corpus in batched transactions.

Fetching is resumable: transcripts already present in the database (or
already captured under <out-dir>/html/) are skipped, so an interrupted run
picks up where it left off. Request starts are paced by a pool-wide
rate limit, and transient failures (HTTP 429 and 5xx) are retried with
exponential backoff.

The run summary is printed as JSON on completion.

Examples:
  # Fetch everything in the ledger at the default 1 request/second
  factbase fetch

  # A faster run against a tolerant origin
  factbase fetch --rps 4 --concurrency 8

  # Per-site headers via a config file
  factbase fetch -c .factbase`,
		Args: cobra.NoArgs,
		RunE: runFetchCmd,
	}

	addFetchFlags(cmd)
	addStorageFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, _ []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	urls, err := ledger.Load(ledgerPath(cfg))
	if err != nil {
		return fmt.Errorf("failed to load URL ledger: %w", err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no discovered URLs in %s (run 'factbase discover' first)", ledgerPath(cfg))
	}

	summary, err := runFetch(ctx, cfg, urls, logger)
	if summary != nil {
		out, marshalErr := json.MarshalIndent(summary, "", "  ")
		if marshalErr == nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("fetch interrupted, partial progress saved")
		return nil
	}
	return err
}

// runFetch executes the fetch stage against the given URL list.
func runFetch(ctx context.Context, cfg *config.Config, urls []string, logger *slog.Logger) (*fetch.Summary, error) {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	opts := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithRateLimit(cfg.RPS),
		fetch.WithConcurrency(cfg.Concurrency),
		fetch.WithBatchSize(cfg.BatchSize),
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithRawDir(filepath.Join(cfg.OutDir, "html")),
	}
	if cfg.Overrides != nil && len(cfg.Overrides.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(cfg.Overrides.Headers))
	}

	return fetch.New(store, opts...).Run(ctx, urls)
}
