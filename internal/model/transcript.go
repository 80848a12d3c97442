package model

import (
	"fmt"
	"strings"
)

// Transcript represents one extracted transcript page.
// ID is stable across re-ingestions: it is derived from the final path
// segment of the source URL, or a short content hash when the segment is
// empty. Re-ingesting the same URL updates the same row.
type Transcript struct {
	// ID is the stable transcript identifier (URL slug or hash fallback).
	ID string `json:"id"`

	// URL is the detail-page URL the transcript was extracted from.
	URL string `json:"url"`

	// Title is the page heading, empty when none could be extracted.
	Title string `json:"title"`

	// Date is the broadcast date in ISO 8601 (YYYY-MM-DD), empty when unknown.
	Date string `json:"date"`

	// DurationSeconds is derived from the last segment's end (or start) time.
	DurationSeconds int `json:"duration_seconds"`

	// FullText is the segment bodies joined with blank-line separators.
	FullText string `json:"full_text,omitempty"`

	// RawHTML is the original page markup. Persisted but never serialized
	// to the read API.
	RawHTML string `json:"-"`

	// CreatedAt is the ingestion timestamp in RFC 3339 UTC.
	CreatedAt string `json:"created_at,omitempty"`

	// Segments are ordered 1..N with no gaps.
	Segments []Segment `json:"segments,omitempty"`

	// Speakers are the per-speaker aggregates, seconds descending.
	Speakers []SpeakerAggregate `json:"speakers,omitempty"`

	// Topics and Entities are transcript-scoped tags. They are populated by
	// an external enrichment step and default to empty.
	Topics   []string `json:"topics,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// Segment is one timestamped span of transcript text.
type Segment struct {
	// Order is the 1-based position of the segment within its transcript.
	Order int `json:"segment_order"`

	// SpeakerName is empty when no speaker label was detected.
	SpeakerName string `json:"speaker_name"`

	// SpeakerID is a short hash of the lowercased speaker name.
	SpeakerID string `json:"speaker_id"`

	// StartTime is the segment start in seconds from the top of the recording.
	StartTime int `json:"start_time"`

	// EndTime is nil when no end timestamp was present and no following
	// segment exists to infer it from.
	EndTime *int `json:"end_time"`

	// Duration is end minus start clamped to >= 0, or an explicit
	// "(N sec)" annotation from the source. Nil when neither is known.
	Duration *int `json:"duration"`

	// Text is the whitespace-normalized segment body.
	Text string `json:"text"`
}

// SpeakerAggregate holds per-speaker totals for one transcript.
// Aggregates are recomputed wholesale on every re-ingestion.
type SpeakerAggregate struct {
	Name      string `json:"name"`
	SpeakerID string `json:"speaker_id"`

	// Sentences is a heuristic count: '.' and '!' occurrences, floored at
	// one per segment.
	Sentences int `json:"sentences"`

	// Words is the whitespace-split word count across the speaker's segments.
	Words int `json:"words"`

	// Seconds is the summed segment duration attributed to this speaker.
	Seconds int `json:"seconds"`

	// Percentage is the speaker's share of total transcript seconds,
	// rounded to two decimals.
	Percentage float64 `json:"percentage"`
}

// FormatTimestamp renders seconds as HH:MM:SS. Hours are not wrapped, so
// recordings longer than a day render as e.g. 25:00:00.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// RenderText renders the transcript in the plain-text exchange format:
// the title, a blank line, then one "HH:MM:SS-HH:MM:SS <speaker>: <text>"
// line per segment. A missing end time repeats the start time.
func (t *Transcript) RenderText() string {
	var b strings.Builder
	title := t.Title
	if title == "" {
		title = t.ID
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	lines := make([]string, 0, len(t.Segments))
	for i := range t.Segments {
		seg := &t.Segments[i]
		end := seg.StartTime
		if seg.EndTime != nil {
			end = *seg.EndTime
		}
		lines = append(lines, fmt.Sprintf("%s-%s %s: %s",
			FormatTimestamp(seg.StartTime), FormatTimestamp(end), seg.SpeakerName, seg.Text))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
