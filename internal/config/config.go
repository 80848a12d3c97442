package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Where the original tooling for the target site had an established value
// (requests per second, retry budget, batch size), we keep it.
const (
	// DefaultStartURL is the paginated listing page discovery starts from.
	DefaultStartURL = "https://rollcall.com/factbase/transcripts/"

	// DefaultRPS is the global requests-per-second ceiling for fetching.
	// One request per second is conservative for a single-origin scrape and
	// stays well under typical rate-limit thresholds.
	DefaultRPS = 1.0

	// DefaultConcurrency is the number of in-flight fetches. Concurrency is
	// independent of throughput: the pacing gate serializes request starts
	// while this bounds how many responses may be outstanding.
	DefaultConcurrency = 4

	// DefaultBatchSize is the number of extracted transcripts committed per
	// database transaction.
	DefaultBatchSize = 50

	// DefaultMaxRetries is the retry budget per URL. Exhausting it records
	// the URL as failed for the remainder of the run.
	DefaultMaxRetries = 5

	// DefaultFetchTimeout applies to each individual fetch attempt.
	// Exceeding it counts as a retryable failure, not a run-wide abort.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxItems caps the discovery set size.
	DefaultMaxItems = 400

	// DefaultIdleCycles is how many consecutive discovery cycles may pass
	// with no new links, no height growth, and no load-more click before
	// discovery terminates.
	DefaultIdleCycles = 10

	// DefaultSettleInterval is how long discovery waits after scrolling for
	// lazily-loaded content to arrive.
	DefaultSettleInterval = 800 * time.Millisecond

	// DefaultCheckpointEvery is how many newly discovered URLs may
	// accumulate between ledger checkpoints. Bounds data loss on crash.
	DefaultCheckpointEvery = 500

	// DefaultHost and DefaultPort are the read API bind address.
	DefaultHost = "0.0.0.0"
	DefaultPort = 5000

	// DefaultUserAgent identifies the tool in HTTP requests.
	DefaultUserAgent = "factbase-tool/0.2 (+https://rollcall.com/factbase)"

	// DefaultPoolSize is the number of pooled database connections used for
	// concurrent batch flushes. SQLite allows a single writer per
	// connection; a small pool lets WAL overlap transactions.
	DefaultPoolSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "factbase"
)

// Config holds all configuration options for the pipeline.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: one flat struct instead of nested per-stage structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// StartURL is the listing page discovery starts from.
	StartURL string

	// MaxItems caps the number of discovered detail URLs.
	MaxItems int

	// IdleCycles is the discovery termination threshold: the number of
	// consecutive cycles with no progress signal before stopping.
	IdleCycles int

	// SettleInterval is how long discovery waits after each interaction
	// cycle for lazily-loaded content.
	SettleInterval time.Duration

	// Headless controls whether the discovery browser runs headless.
	Headless bool

	// OutDir holds run artifacts: the URL ledger, raw HTML captures,
	// exports, and the zero-result DOM dump.
	OutDir string

	// StateDir holds diagnostic state such as the endpoint log.
	StateDir string

	// DBDir is the directory holding the SQLite database file.
	DBDir string

	// RPS is the global requests-per-second ceiling shared by all workers.
	RPS float64

	// Concurrency bounds the number of in-flight fetch requests.
	Concurrency int

	// BatchSize is the number of records per storage transaction.
	BatchSize int

	// MaxRetries is the per-URL retry budget for transient failures.
	MaxRetries int

	// FetchTimeout is the timeout for a single fetch attempt.
	FetchTimeout time.Duration

	// UserAgent is sent with every fetch request.
	UserAgent string

	// Host and Port are the read API bind address.
	Host string
	Port int

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// ConfigFilePath is the explicit path to the YAML override file. When
	// empty, .factbase is searched in the current and home directories.
	ConfigFilePath string

	// Overrides holds values loaded from the YAML override file.
	Overrides *File
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of relying on zero values because
// most defaults are non-zero (rates, timeouts, bind address). It also serves
// as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		StartURL:       DefaultStartURL,
		MaxItems:       DefaultMaxItems,
		IdleCycles:     DefaultIdleCycles,
		SettleInterval: DefaultSettleInterval,
		Headless:       true,
		OutDir:         "out",
		StateDir:       XDGCacheDir(),
		DBDir:          XDGDataDir(),
		RPS:            DefaultRPS,
		Concurrency:    DefaultConcurrency,
		BatchSize:      DefaultBatchSize,
		MaxRetries:     DefaultMaxRetries,
		FetchTimeout:   DefaultFetchTimeout,
		UserAgent:      DefaultUserAgent,
		Host:           DefaultHost,
		Port:           DefaultPort,
	}
}

// XDGDataDir returns the XDG data directory for factbase.
// On Linux: ~/.local/share/factbase
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for factbase.
// On Linux: ~/.cache/factbase
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if c.RPS <= 0 {
		return ErrInvalidRPS
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.IdleCycles <= 0 {
		return ErrInvalidIdleCycles
	}
	return nil
}
