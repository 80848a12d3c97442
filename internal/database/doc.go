// Package database provides SQLite-backed storage for transcripts and
// their full-text search index.
//
// A single database file holds the whole corpus: transcript records,
// their ordered segments, per-speaker rollups, topic and entity tags,
// and a standalone FTS5 table mirroring the segments. Index maintenance
// is explicit: every segment mutation goes through an Indexer so the
// search table can never drift silently out of sync with the relational
// rows.
package database
