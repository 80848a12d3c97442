// Package main provides the entry point for the factbase CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for factbase.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factbase",
		Short: "Build and search a local corpus of political transcripts",
		Long: `Factbase scrapes rollcall.com/factbase transcripts into a local SQLite
corpus with full-text search.

The pipeline has two stages: "discover" drives a headless browser over the
JavaScript listing page to collect transcript URLs into a ledger, and "fetch"
downloads and parses those pages into timed, speaker-attributed segments.
"run" chains both. "serve" exposes the stored corpus over a small read-only
HTTP API, and "export" writes the corpus to JSONL, CSV, and Markdown files.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
