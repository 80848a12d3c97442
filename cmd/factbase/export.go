package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the corpus to JSONL, CSV, and Markdown",
		Long: `Export writes the stored corpus to analysis-friendly files in the export
directory:

  ` + report.TranscriptsJSONLFile + `   one transcript per line, segments inlined
  ` + report.SegmentsJSONLFile + `      one segment per line with its transcript id
  ` + report.TranscriptsCSVFile + `    one row per transcript
  ` + report.SegmentsCSVFile + `       one row per segment
  ` + report.SummaryFile + `            corpus summary with speaker rankings

Raw HTML is never exported.

Examples:
  # Export to <out-dir>/export
  factbase export

  # Export to a specific directory
  factbase export --export-dir /tmp/corpus`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().String("export-dir", "", "Export directory (default: <out-dir>/export)")
	addStorageFlags(cmd)

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
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

	exportDir, err := cmd.Flags().GetString("export-dir")
	if err != nil {
		return err
	}
	if exportDir == "" {
		exportDir = filepath.Join(cfg.OutDir, "export")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := report.Dump(ctx, store, exportDir); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "corpus exported to %s\n", exportDir)
	return nil
}
