package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/factbase/factbase/internal/model"
)

// TranscriptSummary carries the listing fields of a transcript without
// its segments or full text.
type TranscriptSummary struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	DurationSeconds int       `json:"duration_seconds"`
	SegmentCount    int       `json:"segment_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// SpeakerTotals aggregates a speaker's presence across the whole corpus.
type SpeakerTotals struct {
	Name        string `json:"name"`
	SpeakerID   string `json:"speaker_id"`
	Transcripts int    `json:"transcripts"`
	Seconds     int    `json:"seconds"`
	Words       int    `json:"words"`
}

// HasTranscript reports whether a transcript id is already stored.
func (s *Store) HasTranscript(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM transcripts WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check transcript: %w", err)
	}
	return true, nil
}

// CountTranscripts returns the number of stored transcripts.
func (s *Store) CountTranscripts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transcripts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transcripts: %w", err)
	}
	return count, nil
}

// GetTranscript retrieves a transcript and all of its child rows.
// Returns nil without error when the id is unknown. The raw page markup
// is not loaded; read-side callers never need it.
func (s *Store) GetTranscript(ctx context.Context, id string) (*model.Transcript, error) {
	query := `
	SELECT id, url, title, date, duration_seconds, full_text, created_at
	FROM transcripts
	WHERE id = ?
	`

	var tr model.Transcript
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tr.ID, &tr.URL, &tr.Title, &tr.Date, &tr.DurationSeconds, &tr.FullText, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	tr.CreatedAt = parseTimestamp(createdAt).UTC().Format(time.RFC3339)

	if tr.Segments, err = s.getSegments(ctx, id); err != nil {
		return nil, err
	}
	if tr.Speakers, err = s.getSpeakers(ctx, id); err != nil {
		return nil, err
	}
	if tr.Topics, err = s.getTags(ctx, "topics", "topic", id); err != nil {
		return nil, err
	}
	if tr.Entities, err = s.getTags(ctx, "entities", "entity", id); err != nil {
		return nil, err
	}

	return &tr, nil
}

func (s *Store) getSegments(ctx context.Context, transcriptID string) ([]model.Segment, error) {
	query := `
	SELECT seq, speaker_name, speaker_id, start_time, end_time, duration, text
	FROM segments
	WHERE transcript_id = ?
	ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []model.Segment{}
	for rows.Next() {
		var seg model.Segment
		var end, dur sql.NullInt64
		if err := rows.Scan(&seg.Order, &seg.SpeakerName, &seg.SpeakerID,
			&seg.StartTime, &end, &dur, &seg.Text); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		if end.Valid {
			v := int(end.Int64)
			seg.EndTime = &v
		}
		if dur.Valid {
			v := int(dur.Int64)
			seg.Duration = &v
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *Store) getSpeakers(ctx context.Context, transcriptID string) ([]model.SpeakerAggregate, error) {
	query := `
	SELECT name, speaker_id, sentences, words, seconds, percentage
	FROM speakers
	WHERE transcript_id = ?
	ORDER BY seconds DESC, name
	`

	rows, err := s.db.QueryContext(ctx, query, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query speakers: %w", err)
	}
	defer rows.Close()

	speakers := []model.SpeakerAggregate{}
	for rows.Next() {
		var sp model.SpeakerAggregate
		if err := rows.Scan(&sp.Name, &sp.SpeakerID, &sp.Sentences,
			&sp.Words, &sp.Seconds, &sp.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan speaker: %w", err)
		}
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

func (s *Store) getTags(ctx context.Context, table, column, transcriptID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE transcript_id = ? ORDER BY %s", column, table, column),
		transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// ListTranscripts returns a page of transcript summaries ordered newest
// first (by date, then created_at), plus the total corpus size for
// pagination.
func (s *Store) ListTranscripts(ctx context.Context, limit, offset int) ([]TranscriptSummary, int, error) {
	total, err := s.CountTranscripts(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `
	SELECT t.id, t.url, t.title, t.date, t.duration_seconds,
	       (SELECT COUNT(*) FROM segments s WHERE s.transcript_id = t.id),
	       t.created_at
	FROM transcripts t
	ORDER BY t.date DESC, t.created_at DESC, t.id
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	summaries := []TranscriptSummary{}
	for rows.Next() {
		var sum TranscriptSummary
		var createdAt string
		if err := rows.Scan(&sum.ID, &sum.URL, &sum.Title, &sum.Date,
			&sum.DurationSeconds, &sum.SegmentCount, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan summary: %w", err)
		}
		sum.CreatedAt = parseTimestamp(createdAt)
		summaries = append(summaries, sum)
	}
	return summaries, total, rows.Err()
}

// ListSpeakers aggregates speaker totals across the whole corpus, ordered
// by total seconds descending.
func (s *Store) ListSpeakers(ctx context.Context) ([]SpeakerTotals, error) {
	query := `
	SELECT name, speaker_id, COUNT(DISTINCT transcript_id), SUM(seconds), SUM(words)
	FROM speakers
	GROUP BY speaker_id, name
	ORDER BY SUM(seconds) DESC, name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list speakers: %w", err)
	}
	defer rows.Close()

	totals := []SpeakerTotals{}
	for rows.Next() {
		var st SpeakerTotals
		if err := rows.Scan(&st.Name, &st.SpeakerID, &st.Transcripts,
			&st.Seconds, &st.Words); err != nil {
			return nil, fmt.Errorf("failed to scan speaker totals: %w", err)
		}
		totals = append(totals, st)
	}
	return totals, rows.Err()
}
