// Package log provides slog plumbing for the pipeline: a handler wrapper
// that truncates oversized attribute values, and constructors for the
// text and JSON loggers the commands use.
package log
