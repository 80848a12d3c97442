package main

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/factbase/factbase/internal/config"
	"github.com/factbase/factbase/internal/ledger"
	"github.com/factbase/factbase/internal/log"
	"github.com/spf13/cobra"
)

// addStorageFlags registers the flags shared by every command that touches
// the output directory or the database.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out-dir", "o", "out",
		"Directory for run artifacts (URL ledger, raw HTML captures, exports)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .factbase in current or home directory)")
}

// addDiscoverFlags registers the discovery-stage flags.
func addDiscoverFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("start-url", "u", config.DefaultStartURL,
		"Listing page URL discovery starts from")
	cmd.Flags().IntP("max-items", "n", config.DefaultMaxItems,
		"Maximum number of transcript URLs to discover")
	cmd.Flags().Int("idle-cycles", config.DefaultIdleCycles,
		"Consecutive cycles without progress before discovery stops")
	cmd.Flags().Duration("settle", config.DefaultSettleInterval,
		"Wait after each scroll for lazily-loaded content")
	cmd.Flags().Bool("headful", false,
		"Run the discovery browser with a visible window (for debugging)")
	cmd.Flags().String("state-dir", config.XDGCacheDir(),
		"Directory for diagnostic state (captured XHR endpoints, DOM dumps)")
}

// addFetchFlags registers the fetch-stage flags.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("rps", "r", config.DefaultRPS,
		"Requests per second shared by all fetch workers")
	cmd.Flags().IntP("concurrency", "w", config.DefaultConcurrency,
		"Number of concurrent fetch workers")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of transcripts committed per database transaction")
	cmd.Flags().Int("max-retries", config.DefaultMaxRetries,
		"Retry budget per URL for transient failures")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for a single fetch attempt")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with fetch requests")
}

// buildConfig creates a Config from cobra command flags. Commands register
// different flag subsets, so each flag is read only when present.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	getString := func(name string, dst *string) {
		if err == nil && flags.Lookup(name) != nil {
			*dst, err = flags.GetString(name)
		}
	}
	getInt := func(name string, dst *int) {
		if err == nil && flags.Lookup(name) != nil {
			*dst, err = flags.GetInt(name)
		}
	}

	getString("start-url", &cfg.StartURL)
	getInt("max-items", &cfg.MaxItems)
	getInt("idle-cycles", &cfg.IdleCycles)
	getString("state-dir", &cfg.StateDir)
	getString("out-dir", &cfg.OutDir)
	getString("db-dir", &cfg.DBDir)
	getInt("concurrency", &cfg.Concurrency)
	getInt("batch-size", &cfg.BatchSize)
	getInt("max-retries", &cfg.MaxRetries)
	getString("user-agent", &cfg.UserAgent)
	getString("host", &cfg.Host)
	getInt("port", &cfg.Port)
	getString("config", &cfg.ConfigFilePath)
	if err == nil && flags.Lookup("rps") != nil {
		cfg.RPS, err = flags.GetFloat64("rps")
	}
	if err == nil && flags.Lookup("timeout") != nil {
		cfg.FetchTimeout, err = flags.GetDuration("timeout")
	}
	if err == nil && flags.Lookup("settle") != nil {
		cfg.SettleInterval, err = flags.GetDuration("settle")
	}
	if err == nil && flags.Lookup("headful") != nil {
		var headful bool
		headful, err = flags.GetBool("headful")
		cfg.Headless = !headful
	}
	if err != nil {
		return nil, err
	}

	// Load overrides from the config file. An explicitly given path must
	// exist; the default search locations may be absent.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		overrides, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(overrides)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	return cfg, nil
}

// detailPattern returns the compiled detail-URL pattern, honoring the
// config-file override.
func detailPattern(cfg *config.Config) (*regexp.Regexp, error) {
	if cfg.Overrides == nil || cfg.Overrides.DetailPattern == "" {
		return ledger.DefaultDetailPattern, nil
	}
	pattern, err := regexp.Compile(cfg.Overrides.DetailPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid detail pattern %q: %w", cfg.Overrides.DetailPattern, err)
	}
	return pattern, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger shared by all commands. Raw
// markup in attribute values is truncated before it reaches the terminal.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}
