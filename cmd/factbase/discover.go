package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/factbase/factbase/internal/config"
	"github.com/factbase/factbase/internal/discover"
	"github.com/factbase/factbase/internal/ledger"
	"github.com/spf13/cobra"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Collect transcript URLs from the listing page",
		Long: `Discover drives a headless Chrome browser over the JavaScript-rendered
transcript listing page. It dismisses consent overlays, clicks load-more
buttons, and scrolls until no new content appears, harvesting every link
that matches the transcript detail-URL pattern.

Discovered URLs are merged into the ledger file (` + ledger.FileName + `)
in the output directory, ordered newest-first by the date embedded in the
URL slug. Re-running discover never loses previously collected URLs.

Examples:
  # Collect up to 400 transcript URLs (the default)
  factbase discover

  # A short debugging run with a visible browser window
  factbase discover --max-items 20 --headful

  # Resume against a custom output directory
  factbase discover -o /data/factbase`,
		Args: cobra.NoArgs,
		RunE: runDiscoverCmd,
	}

	addDiscoverFlags(cmd)
	addStorageFlags(cmd)

	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
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

	fmt.Fprintf(cmd.OutOrStdout(), "discovered %d transcript URLs (ledger: %s)\n",
		len(urls), ledgerPath(cfg))
	return nil
}

// runDiscover executes the discovery stage and persists the result into the
// ledger. A cancelled run still persists what it found so far.
func runDiscover(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	pattern, err := detailPattern(cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := ledgerPath(cfg)
	opts := []discover.Option{
		discover.WithLogger(logger),
		discover.WithMaxItems(cfg.MaxItems),
		discover.WithIdleCycles(cfg.IdleCycles),
		discover.WithSettleInterval(cfg.SettleInterval),
		discover.WithArtifactDir(cfg.StateDir),
		discover.WithCheckpoint(config.DefaultCheckpointEvery, func(urls []string) error {
			_, err := ledger.MergeAndPersist(path, urls)
			return err
		}),
	}
	if !cfg.Headless {
		opts = append(opts, discover.WithHeadful())
	}

	found, runErr := discover.New(cfg.StartURL, pattern, opts...).Run(ctx)

	// Persist partial progress before deciding how the run ended.
	merged, mergeErr := ledger.MergeAndPersist(path, found)
	if mergeErr != nil {
		return nil, mergeErr
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Info("discovery interrupted, partial results saved",
				"found", len(found), "ledger", len(merged))
			return merged, nil
		}
		return nil, runErr
	}

	logger.Info("discovery complete", "found", len(found), "ledger", len(merged))
	return merged, nil
}

// ledgerPath returns the URL ledger location inside the output directory.
func ledgerPath(cfg *config.Config) string {
	return filepath.Join(cfg.OutDir, ledger.FileName)
}
