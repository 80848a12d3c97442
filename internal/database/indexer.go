package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/factbase/factbase/internal/model"
)

// Indexer maintains a derived search index alongside segment writes.
// Both hooks run inside the caller's transaction, so index rows commit
// or roll back together with the relational rows they mirror.
type Indexer interface {
	// SegmentInserted indexes one freshly inserted segment row.
	SegmentInserted(ctx context.Context, tx *sql.Tx, rowID int64, seg *model.Segment, transcriptID, title string) error

	// SegmentsDeleted drops every index row belonging to a transcript.
	SegmentsDeleted(ctx context.Context, tx *sql.Tx, transcriptID string) error
}

// FTSIndexer maintains the segments_fts FTS5 table. The index rowid is
// the segment's primary key, which lets search results join back to a
// single segment row.
type FTSIndexer struct{}

// SegmentInserted mirrors a segment into the full-text table.
func (FTSIndexer) SegmentInserted(ctx context.Context, tx *sql.Tx, rowID int64, seg *model.Segment, transcriptID, title string) error {
	query := `
	INSERT INTO segments_fts (rowid, text, speaker_name, speaker_id, title, transcript_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		rowID, seg.Text, seg.SpeakerName, seg.SpeakerID, title, transcriptID,
	); err != nil {
		return fmt.Errorf("failed to insert index row: %w", err)
	}
	return nil
}

// SegmentsDeleted drops a transcript's rows from the full-text table.
func (FTSIndexer) SegmentsDeleted(ctx context.Context, tx *sql.Tx, transcriptID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM segments_fts WHERE transcript_id = ?", transcriptID); err != nil {
		return fmt.Errorf("failed to delete index rows: %w", err)
	}
	return nil
}
