package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/factbase/factbase/internal/model"
)

// FileName is the database file created under the data directory.
const FileName = "factbase.db"

// Store provides SQLite-based storage for the transcript corpus.
// It manages a bounded connection pool and provides methods for writes,
// reads, and search-index maintenance.
//
// Design decision: We use a single database file for the whole corpus
// rather than one file per transcript source. This keeps cross-transcript
// queries (speaker rollups, full-text search) in plain SQL and makes
// backup a single-file copy.
type Store struct {
	// db is the underlying SQL database connection pool.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// indexer maintains the full-text index alongside segment writes.
	indexer Indexer
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers don't block the
	// writer. Recommended for most use cases.
	EnableWAL bool

	// PoolSize bounds the number of open connections. Callers block on
	// checkout when all connections are busy.
	PoolSize int

	// Indexer maintains the search index. Defaults to the built-in FTS5
	// indexer when nil.
	Indexer Indexer
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		PoolSize:          4,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string.
	// modernc.org/sqlite applies _pragma parameters to every pooled
	// connection, which matters for foreign_keys since that pragma is
	// per-connection. busy_timeout lets concurrent writers queue instead
	// of failing with SQLITE_BUSY.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}
	dsn += "&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if opts.EnableWAL {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	poolSize := opts.PoolSize
	if poolSize < 1 {
		poolSize = DefaultOptions().PoolSize
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)
	db.SetConnMaxLifetime(time.Hour)

	indexer := opts.Indexer
	if indexer == nil {
		indexer = FTSIndexer{}
	}

	s := &Store{
		db:      db,
		dbPath:  dbPath,
		indexer: indexer,
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for read-side query builders.
func (s *Store) DB() *sql.DB {
	return s.db
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Transcripts store one row per fetched transcript page
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		full_text TEXT NOT NULL DEFAULT '',
		raw_html TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transcripts_date ON transcripts(date);

	-- Segments store the ordered timestamped utterances of a transcript
	CREATE TABLE IF NOT EXISTS segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		speaker_name TEXT NOT NULL DEFAULT '',
		speaker_id TEXT NOT NULL DEFAULT 'unknown',
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		duration INTEGER,
		text TEXT NOT NULL,
		UNIQUE(transcript_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_segments_transcript ON segments(transcript_id);
	CREATE INDEX IF NOT EXISTS idx_segments_speaker ON segments(speaker_id);

	-- Speakers store per-transcript talk-time rollups
	CREATE TABLE IF NOT EXISTS speakers (
		transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		speaker_id TEXT NOT NULL,
		sentences INTEGER NOT NULL DEFAULT 0,
		words INTEGER NOT NULL DEFAULT 0,
		seconds INTEGER NOT NULL DEFAULT 0,
		percentage REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (transcript_id, name)
	);

	CREATE TABLE IF NOT EXISTS topics (
		transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
		topic TEXT NOT NULL,
		PRIMARY KEY (transcript_id, topic)
	);

	CREATE TABLE IF NOT EXISTS entities (
		transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
		entity TEXT NOT NULL,
		PRIMARY KEY (transcript_id, entity)
	);

	-- Standalone full-text table over segments. Its rowid mirrors
	-- segments.id; rows are maintained explicitly by the Indexer rather
	-- than by triggers, so a failed write can never leave a half-updated
	-- index behind a committed transaction.
	CREATE VIRTUAL TABLE IF NOT EXISTS segments_fts USING fts5(
		text,
		speaker_name,
		speaker_id,
		title,
		transcript_id UNINDEXED
	);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// UpsertTranscript inserts or replaces a transcript and all of its child
// rows in a single transaction. Re-upserting the same transcript is
// idempotent: old segments, rollups, tags, and index rows are replaced
// wholesale.
func (s *Store) UpsertTranscript(ctx context.Context, tr *model.Transcript) error {
	return s.FlushBatch(ctx, []*model.Transcript{tr})
}

// FlushBatch persists a batch of transcripts in one transaction on a
// dedicated pooled connection. The batch is all-or-nothing: if any record
// fails, the whole transaction rolls back and the error is returned.
func (s *Store) FlushBatch(ctx context.Context, batch []*model.Transcript) error {
	if len(batch) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to check out connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, tr := range batch {
		if err := s.upsertTx(ctx, tx, tr); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to persist transcript %s: %w", tr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// upsertTx writes one transcript and its children inside tx.
func (s *Store) upsertTx(ctx context.Context, tx *sql.Tx, tr *model.Transcript) error {
	query := `
	INSERT INTO transcripts (id, url, title, date, duration_seconds, full_text, raw_html)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		title = excluded.title,
		date = excluded.date,
		duration_seconds = excluded.duration_seconds,
		full_text = excluded.full_text,
		raw_html = excluded.raw_html
	`
	if _, err := tx.ExecContext(ctx, query,
		tr.ID, tr.URL, tr.Title, tr.Date, tr.DurationSeconds, tr.FullText, tr.RawHTML,
	); err != nil {
		return fmt.Errorf("failed to upsert transcript row: %w", err)
	}

	// Replace children wholesale. The index rows go first so the segment
	// rowids they reference still exist.
	if err := s.indexer.SegmentsDeleted(ctx, tx, tr.ID); err != nil {
		return fmt.Errorf("failed to clear index rows: %w", err)
	}
	for _, table := range []string{"segments", "speakers", "topics", "entities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE transcript_id = ?", tr.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	segQuery := `
	INSERT INTO segments (transcript_id, seq, speaker_name, speaker_id, start_time, end_time, duration, text)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range tr.Segments {
		seg := &tr.Segments[i]
		res, err := tx.ExecContext(ctx, segQuery,
			tr.ID, seg.Order, seg.SpeakerName, seg.SpeakerID,
			seg.StartTime, seg.EndTime, seg.Duration, seg.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", seg.Order, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read segment rowid: %w", err)
		}
		if err := s.indexer.SegmentInserted(ctx, tx, rowID, seg, tr.ID, tr.Title); err != nil {
			return fmt.Errorf("failed to index segment %d: %w", seg.Order, err)
		}
	}

	spkQuery := `
	INSERT INTO speakers (transcript_id, name, speaker_id, sentences, words, seconds, percentage)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i := range tr.Speakers {
		sp := &tr.Speakers[i]
		if _, err := tx.ExecContext(ctx, spkQuery,
			tr.ID, sp.Name, sp.SpeakerID, sp.Sentences, sp.Words, sp.Seconds, sp.Percentage,
		); err != nil {
			return fmt.Errorf("failed to insert speaker %s: %w", sp.Name, err)
		}
	}

	for _, topic := range tr.Topics {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO topics (transcript_id, topic) VALUES (?, ?)", tr.ID, topic); err != nil {
			return fmt.Errorf("failed to insert topic %s: %w", topic, err)
		}
	}
	for _, entity := range tr.Entities {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO entities (transcript_id, entity) VALUES (?, ?)", tr.ID, entity); err != nil {
			return fmt.Errorf("failed to insert entity %s: %w", entity, err)
		}
	}

	return nil
}

// DeleteTranscript removes a transcript, its children, and its index rows.
// Deleting an unknown id is a no-op.
func (s *Store) DeleteTranscript(ctx context.Context, id string) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to check out connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.indexer.SegmentsDeleted(ctx, tx, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear index rows: %w", err)
	}
	// Children go via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, "DELETE FROM transcripts WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Reindex rebuilds the whole full-text table from the relational rows.
// Used when the index is suspected stale, for example after a schema
// migration or a crash between index generations.
func (s *Store) Reindex(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to check out connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	rebuild := `
	DELETE FROM segments_fts;
	INSERT INTO segments_fts (rowid, text, speaker_name, speaker_id, title, transcript_id)
	SELECT s.id, s.text, s.speaker_name, s.speaker_id, t.title, s.transcript_id
	FROM segments s
	JOIN transcripts t ON t.id = s.transcript_id;
	`
	if _, err := tx.ExecContext(ctx, rebuild); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reindex: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
