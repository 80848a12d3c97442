// Package fetch retrieves transcript pages over HTTP with bounded
// concurrency, global request pacing, and retrying.
//
// A single shared pacing gate spaces out request starts across all
// workers, so the configured requests-per-second ceiling holds for the
// whole pool rather than per worker. Completed pages are extracted and
// accumulated into batches that persist as one transaction each, making
// the run safely resumable: URLs whose transcripts are already stored
// are skipped without a network call.
package fetch
