// Package main provides the entry point for the factbase CLI.
//
// Factbase builds a searchable local corpus of political transcripts from
// rollcall.com/factbase: it discovers transcript URLs from the JavaScript
// listing page, fetches and parses transcript pages into timed segments,
// stores them in a full-text-indexed SQLite database, and serves a small
// read-only search API.
//
// Usage:
//
//	factbase discover
//	factbase fetch
//	factbase run
//	factbase serve
//	factbase export
//
// See --help for all available options.
package main

// main is the entry point for factbase.
func main() {
	Execute()
}
