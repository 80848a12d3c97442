package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: package-level sentinel errors rather than fresh error
// instances in Validate(), so callers can use errors.Is() while still
// getting human-readable messages.
var (
	// ErrNoStartURL is returned when no listing start URL is configured.
	ErrNoStartURL = errors.New("no start URL configured")

	// ErrInvalidRPS is returned when the requests-per-second ceiling is
	// not positive. Zero would stall the pacing gate forever.
	ErrInvalidRPS = errors.New("invalid rps: must be positive")

	// ErrInvalidConcurrency is returned when the in-flight request bound
	// is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the storage batch size is not
	// positive. Zero would mean nothing is ever flushed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxRetries is returned when the retry budget is negative.
	// Use 0 to disable retries.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidFetchTimeout is returned when the per-attempt timeout is
	// not positive.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidIdleCycles is returned when the discovery idle threshold
	// is not positive.
	ErrInvalidIdleCycles = errors.New("invalid idle cycles: must be positive")
)
