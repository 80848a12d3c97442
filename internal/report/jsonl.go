package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/factbase/factbase/internal/model"
)

// JSONLExporter writes one JSON object per transcript per line. Raw page
// markup is never included; the model excludes it from serialization.
type JSONLExporter struct {
	output io.Writer
}

// NewJSONLExporter creates a JSONLExporter writing to output.
func NewJSONLExporter(output io.Writer) *JSONLExporter {
	return &JSONLExporter{output: output}
}

// Export writes each transcript as one JSON line.
func (e *JSONLExporter) Export(transcripts []*model.Transcript) (int, error) {
	enc := json.NewEncoder(e.output)
	for i, tr := range transcripts {
		if err := enc.Encode(tr); err != nil {
			return i, fmt.Errorf("failed to encode transcript %s: %w", tr.ID, err)
		}
	}
	return len(transcripts), nil
}

// SegmentJSONLExporter writes one JSON object per segment per line, each
// carrying its transcript id so the file is self-contained.
type SegmentJSONLExporter struct {
	output io.Writer
}

// NewSegmentJSONLExporter creates a SegmentJSONLExporter writing to output.
func NewSegmentJSONLExporter(output io.Writer) *SegmentJSONLExporter {
	return &SegmentJSONLExporter{output: output}
}

// segmentLine is the per-segment export record.
type segmentLine struct {
	TranscriptID string `json:"transcript_id"`
	model.Segment
}

// Export writes each segment of each transcript as one JSON line, ordered
// by transcript then segment order.
func (e *SegmentJSONLExporter) Export(transcripts []*model.Transcript) (int, error) {
	enc := json.NewEncoder(e.output)
	count := 0
	for _, tr := range transcripts {
		for i := range tr.Segments {
			line := segmentLine{TranscriptID: tr.ID, Segment: tr.Segments[i]}
			if err := enc.Encode(line); err != nil {
				return count, fmt.Errorf("failed to encode segment %d of %s: %w", tr.Segments[i].Order, tr.ID, err)
			}
			count++
		}
	}
	return count, nil
}
