// Package server exposes the read-side HTTP API over the transcript
// store: listing, retrieval, plain-text rendering, full-text search,
// and corpus-wide speaker rollups. It is a thin routing layer; all
// query semantics live in the database and search packages.
package server
