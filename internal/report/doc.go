// Package report exports the transcript corpus for offline analysis:
// JSON Lines and CSV dumps of transcripts and segments, plus a Markdown
// corpus summary.
package report
