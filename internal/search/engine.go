package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sort modes accepted by a search request.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortOldest    = "oldest"
)

// Pagination bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ErrBadQuery indicates the search expression could not be parsed by the
// full-text engine. Callers typically map it to a client error.
var ErrBadQuery = errors.New("unparsable search query")

// Request carries a search expression plus structured filters.
type Request struct {
	// Query is the user search expression. Field prefixes and boolean
	// syntax are handled by Translate.
	Query string

	// Speakers restricts results to segments whose speaker name
	// partially matches any entry (case-insensitive).
	Speakers []string

	// DateFrom/DateTo bound the transcript date, inclusive, ISO 8601.
	DateFrom string
	DateTo   string

	// Topic and Entity require the transcript to carry a tag partially
	// matching the value, case-insensitively.
	Topic  string
	Entity string

	// MinDuration drops segments shorter than this many seconds.
	MinDuration int

	// Sort is one of the Sort constants; empty means relevance.
	Sort string

	// Page is 1-based; PerPage is clamped to MaxPerPage.
	Page    int
	PerPage int
}

// Result is one matched transcript.
type Result struct {
	TranscriptID string   `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	TopSpeakers  []string `json:"top_speakers"`
	Snippet      string   `json:"snippet"`
}

// Response is a page of results plus the total distinct-transcript count.
type Response struct {
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"page_size"`
	Items   []Result `json:"items"`
}

// Engine executes translated queries against the transcript index.
type Engine struct {
	db *sql.DB
}

// New returns an Engine backed by the given connection pool.
func New(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Search runs one request: translate the expression, compose filters,
// count distinct matching transcripts, and load the requested page with
// a highlighted snippet of each transcript's best-matching segment.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	match := Translate(req.Query)

	where, args := composeFilters(match, req)

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	countQuery := `
	SELECT COUNT(DISTINCT f.transcript_id)
	FROM segments_fts f
	JOIN segments s ON s.id = f.rowid
	JOIN transcripts t ON t.id = f.transcript_id
	WHERE ` + where

	var total int
	if err := e.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, classifyQueryError(err)
	}

	// FTS5 refuses bm25() and snippet() inside aggregates, so the ranked
	// CTE evaluates them per matched row and the aggregation happens over
	// its plain columns. Referencing ranked twice keeps it materialized;
	// the self-join on the minimum score picks each transcript's
	// best-ranked row, snippet included.
	pageQuery := `
	WITH ranked AS MATERIALIZED (
		SELECT f.transcript_id AS transcript_id, t.title AS title, t.date AS date,
		       snippet(segments_fts, 0, '<mark>', '</mark>', '…', 12) AS snip,
		       bm25(segments_fts) AS score
		FROM segments_fts f
		JOIN segments s ON s.id = f.rowid
		JOIN transcripts t ON t.id = f.transcript_id
		WHERE ` + where + `
	),
	best AS (
		SELECT transcript_id, MIN(score) AS score
		FROM ranked
		GROUP BY transcript_id
	)
	SELECT r.transcript_id, r.title, r.date, r.snip, r.score
	FROM ranked r
	JOIN best b ON b.transcript_id = r.transcript_id AND b.score = r.score
	GROUP BY r.transcript_id
	ORDER BY ` + orderClause(req.Sort) + `
	LIMIT ? OFFSET ?`

	pageArgs := append(append([]interface{}{}, args...), perPage, (page-1)*perPage)

	rows, err := e.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, classifyQueryError(err)
	}
	defer rows.Close()

	items := []Result{}
	for rows.Next() {
		var r Result
		var score float64
		if err := rows.Scan(&r.TranscriptID, &r.Title, &r.Date, &r.Snippet, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	for i := range items {
		speakers, err := e.topSpeakers(ctx, items[i].TranscriptID)
		if err != nil {
			return nil, err
		}
		items[i].TopSpeakers = speakers
	}

	return &Response{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Items:   items,
	}, nil
}

// composeFilters builds the WHERE clause: the MATCH expression first,
// then one ANDed predicate per active filter.
func composeFilters(match string, req Request) (string, []interface{}) {
	conds := []string{"segments_fts MATCH ?"}
	args := []interface{}{match}

	if names := activeSpeakers(req.Speakers); len(names) > 0 {
		group := make([]string, 0, len(names))
		for _, name := range names {
			group = append(group, "f.speaker_name LIKE ?")
			args = append(args, "%"+name+"%")
		}
		conds = append(conds, "("+strings.Join(group, " OR ")+")")
	}
	if req.DateFrom != "" {
		conds = append(conds, "t.date >= ?")
		args = append(args, req.DateFrom)
	}
	if req.DateTo != "" {
		conds = append(conds, "t.date <= ?")
		args = append(args, req.DateTo)
	}
	if req.Topic != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM topics tp WHERE tp.transcript_id = f.transcript_id AND tp.topic LIKE ?)")
		args = append(args, "%"+req.Topic+"%")
	}
	if req.Entity != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM entities en WHERE en.transcript_id = f.transcript_id AND en.entity LIKE ?)")
		args = append(args, "%"+req.Entity+"%")
	}
	if req.MinDuration > 0 {
		conds = append(conds, "COALESCE(s.duration, 0) >= ?")
		args = append(args, req.MinDuration)
	}

	return strings.Join(conds, " AND "), args
}

// activeSpeakers trims the filter list and drops blanks.
func activeSpeakers(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// orderClause maps a sort mode onto an ORDER BY body. bm25 scores are
// ascending-is-better, so relevance sorts ascending.
func orderClause(sort string) string {
	switch sort {
	case SortNewest:
		return "r.date DESC, r.transcript_id"
	case SortOldest:
		return "r.date ASC, r.transcript_id"
	default:
		return "r.score, r.transcript_id"
	}
}

// topSpeakers returns up to three speakers by talk time for a transcript.
func (e *Engine) topSpeakers(ctx context.Context, transcriptID string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT name FROM speakers WHERE transcript_id = ? ORDER BY seconds DESC, name LIMIT 3",
		transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query top speakers: %w", err)
	}
	defer rows.Close()

	speakers := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan speaker: %w", err)
		}
		speakers = append(speakers, name)
	}
	return speakers, rows.Err()
}

// classifyQueryError wraps full-text syntax failures in ErrBadQuery so
// transports can distinguish a bad expression from a storage fault.
func classifyQueryError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "fts5: syntax error") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unterminated string") {
		return fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	return fmt.Errorf("failed to run search query: %w", err)
}
