package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/factbase/factbase/internal/model"
)

// TranscriptCSVExporter writes one row per transcript with listing-level
// fields only.
type TranscriptCSVExporter struct {
	output io.Writer
}

// NewTranscriptCSVExporter creates a TranscriptCSVExporter writing to
// output.
func NewTranscriptCSVExporter(output io.Writer) *TranscriptCSVExporter {
	return &TranscriptCSVExporter{output: output}
}

// Export writes the transcript rows.
func (e *TranscriptCSVExporter) Export(transcripts []*model.Transcript) (int, error) {
	w := csv.NewWriter(e.output)
	header := []string{"id", "url", "title", "date", "duration_seconds", "segments", "speakers"}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for i, tr := range transcripts {
		row := []string{
			tr.ID,
			tr.URL,
			tr.Title,
			tr.Date,
			strconv.Itoa(tr.DurationSeconds),
			strconv.Itoa(len(tr.Segments)),
			strconv.Itoa(len(tr.Speakers)),
		}
		if err := w.Write(row); err != nil {
			return i, fmt.Errorf("failed to write transcript %s: %w", tr.ID, err)
		}
	}

	w.Flush()
	return len(transcripts), w.Error()
}

// SegmentCSVExporter writes one row per segment across the corpus.
type SegmentCSVExporter struct {
	output io.Writer
}

// NewSegmentCSVExporter creates a SegmentCSVExporter writing to output.
func NewSegmentCSVExporter(output io.Writer) *SegmentCSVExporter {
	return &SegmentCSVExporter{output: output}
}

// Export writes the segment rows. Missing end times and durations export
// as empty cells rather than zeroes.
func (e *SegmentCSVExporter) Export(transcripts []*model.Transcript) (int, error) {
	w := csv.NewWriter(e.output)
	header := []string{"transcript_id", "seq", "speaker_name", "speaker_id", "start_time", "end_time", "duration", "text"}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	rows := 0
	for _, tr := range transcripts {
		for i := range tr.Segments {
			seg := &tr.Segments[i]
			row := []string{
				tr.ID,
				strconv.Itoa(seg.Order),
				seg.SpeakerName,
				seg.SpeakerID,
				strconv.Itoa(seg.StartTime),
				optionalInt(seg.EndTime),
				optionalInt(seg.Duration),
				seg.Text,
			}
			if err := w.Write(row); err != nil {
				return rows, fmt.Errorf("failed to write segment %s/%d: %w", tr.ID, seg.Order, err)
			}
			rows++
		}
	}

	w.Flush()
	return rows, w.Error()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
