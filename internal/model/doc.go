// Package model defines the core data structures shared across the pipeline.
//
// This package contains the following main types:
//   - Transcript: a fully extracted transcript with its ordered segments
//   - Segment: one timestamped, speaker-attributed span of transcript text
//   - SpeakerAggregate: per-speaker totals derived from the segments
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, database, search, server, report)
// need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for the read API and
// the export files.
package model
