package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover and fetch in one pass",
		Long: `Run chains the discover and fetch stages: it collects transcript URLs
from the listing page into the ledger, then downloads and stores every
transcript the ledger holds. The combined run is resumable the same way
the individual stages are.

Examples:
  # Build the corpus end to end
  factbase run

  # A small bounded run
  factbase run --max-items 50 --rps 2`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addDiscoverFlags(cmd)
	addFetchFlags(cmd)
	addStorageFlags(cmd)

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
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

	urls, err := runDiscover(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("discovery found no transcript URLs")
	}

	// Discovery swallows cancellation after persisting; do not start
	// fetching when the run was interrupted.
	if ctx.Err() != nil {
		return nil
	}

	summary, err := runFetch(ctx, cfg, urls, logger)
	if summary != nil {
		out, marshalErr := json.MarshalIndent(summary, "", "  ")
		if marshalErr == nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("run interrupted, partial progress saved")
		return nil
	}
	return err
}
