package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/model"
)

// Export file names written under the output directory.
const (
	TranscriptsJSONLFile = "transcripts.jsonl"
	SegmentsJSONLFile    = "segments.jsonl"
	TranscriptsCSVFile   = "transcripts.csv"
	SegmentsCSVFile      = "segments.csv"
	SummaryFile          = "summary.md"
)

// Dump loads the whole corpus from the store and writes every export
// format into dir.
func Dump(ctx context.Context, store *database.Store, dir string) error {
	transcripts, err := loadCorpus(ctx, store)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		name string
		newFn func(out *os.File) Exporter
	}{
		{name: TranscriptsJSONLFile, newFn: func(out *os.File) Exporter { return NewJSONLExporter(out) }},
		{name: SegmentsJSONLFile, newFn: func(out *os.File) Exporter { return NewSegmentJSONLExporter(out) }},
		{name: TranscriptsCSVFile, newFn: func(out *os.File) Exporter { return NewTranscriptCSVExporter(out) }},
		{name: SegmentsCSVFile, newFn: func(out *os.File) Exporter { return NewSegmentCSVExporter(out) }},
		{name: SummaryFile, newFn: func(out *os.File) Exporter { return NewMarkdownExporter(out) }},
	}

	for _, f := range files {
		if err := writeExport(filepath.Join(dir, f.name), f.newFn, transcripts); err != nil {
			return err
		}
	}
	return nil
}

// writeExport runs one exporter against a freshly created file.
func writeExport(path string, newFn func(out *os.File) Exporter, transcripts []*model.Transcript) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := newFn(out).Export(transcripts); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// loadCorpus pages through the store and loads every transcript with its
// children.
func loadCorpus(ctx context.Context, store *database.Store) ([]*model.Transcript, error) {
	total, err := store.CountTranscripts(ctx)
	if err != nil {
		return nil, err
	}

	transcripts := make([]*model.Transcript, 0, total)
	const pageSize = 100
	for offset := 0; offset < total; offset += pageSize {
		page, _, err := store.ListTranscripts(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, sum := range page {
			tr, err := store.GetTranscript(ctx, sum.ID)
			if err != nil {
				return nil, err
			}
			if tr != nil {
				transcripts = append(transcripts, tr)
			}
		}
	}
	return transcripts, nil
}
