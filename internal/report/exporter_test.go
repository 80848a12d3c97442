package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/factbase/factbase/internal/database"
	"github.com/factbase/factbase/internal/model"
)

func intPtr(v int) *int { return &v }

func sampleCorpus() []*model.Transcript {
	return []*model.Transcript{
		{
			ID:              "presser",
			URL:             "https://rollcall.com/factbase/trump/transcript/presser/",
			Title:           "Donald Trump Press Conference",
			Date:            "2023-05-01",
			DurationSeconds: 10,
			FullText:        "Thank you very much.",
			RawHTML:         "<html>never exported</html>",
			Segments: []model.Segment{
				{Order: 1, SpeakerName: "Donald Trump", SpeakerID: "donald trump",
					StartTime: 0, EndTime: intPtr(10), Duration: intPtr(10),
					Text: "Thank you very much."},
			},
			Speakers: []model.SpeakerAggregate{
				{Name: "Donald Trump", SpeakerID: "donald trump", Sentences: 1, Words: 4, Seconds: 10, Percentage: 100},
			},
		},
		{
			ID:              "remarks",
			URL:             "https://rollcall.com/factbase/senate/transcript/remarks/",
			Title:           "Senate Floor Remarks",
			Date:            "2021-02-10",
			DurationSeconds: 30,
			Segments: []model.Segment{
				{Order: 1, SpeakerName: "Senator", SpeakerID: "senator",
					StartTime: 0, Text: "Remarks on the budget."},
			},
			Speakers: []model.SpeakerAggregate{
				{Name: "Senator", SpeakerID: "senator", Sentences: 1, Words: 5, Seconds: 30, Percentage: 100},
			},
		},
	}
}

// TestJSONLExporter tests line-oriented JSON output.
func TestJSONLExporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewJSONLExporter(&buf).Export(sampleCorpus())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 2 {
		t.Errorf("records = %d, want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var first model.Transcript
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.ID != "presser" || len(first.Segments) != 1 {
		t.Errorf("first line = %+v", first)
	}
	if strings.Contains(buf.String(), "never exported") {
		t.Error("raw markup leaked into the export")
	}
}

// TestCSVExporters tests both CSV shapes.
func TestCSVExporters(t *testing.T) {
	t.Parallel()

	t.Run("transcripts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTranscriptCSVExporter(&buf).Export(sampleCorpus())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if n != 2 {
			t.Errorf("records = %d, want 2", n)
		}

		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("read csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want header + 2", len(rows))
		}
		if rows[0][0] != "id" || rows[1][0] != "presser" || rows[1][4] != "10" {
			t.Errorf("rows = %v", rows)
		}
	})

	t.Run("segments", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSegmentCSVExporter(&buf).Export(sampleCorpus())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if n != 2 {
			t.Errorf("rows = %d, want 2", n)
		}

		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("read csv: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d", len(rows))
		}
		// The open-ended senator segment has empty end/duration cells.
		if rows[2][5] != "" || rows[2][6] != "" {
			t.Errorf("open segment row = %v", rows[2])
		}
	})
}

// TestMarkdownExporter tests the corpus summary.
func TestMarkdownExporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownExporter(&buf).Export(sampleCorpus()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Transcript Corpus Summary",
		"## Totals",
		"## Top Speakers",
		"## Recent Transcripts",
		"Senator",
		"2023-05-01",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

// TestSegmentJSONLExporter tests per-segment line output.
func TestSegmentJSONLExporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewSegmentJSONLExporter(&buf).Export(sampleCorpus())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 2 {
		t.Errorf("records = %d, want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var first struct {
		TranscriptID string `json:"transcript_id"`
		model.Segment
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first.TranscriptID != "presser" || first.Order != 1 || first.Text != "Thank you very much." {
		t.Errorf("first line = %+v", first)
	}
}

// TestMultiExporter tests fan-out.
func TestMultiExporter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	n, err := NewMultiExporter(NewJSONLExporter(&a), NewJSONLExporter(&b)).Export(sampleCorpus())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 4 {
		t.Errorf("total records = %d, want 4", n)
	}
	if a.String() != b.String() {
		t.Error("exporters received different corpora")
	}
}

// TestDump tests the store-to-directory export.
func TestDump(t *testing.T) {
	t.Parallel()

	store, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.FlushBatch(ctx, sampleCorpus()); err != nil {
		t.Fatalf("FlushBatch() error = %v", err)
	}

	dir := filepath.Join(t.TempDir(), "export")
	if err := Dump(ctx, store, dir); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	for _, name := range []string{TranscriptsJSONLFile, SegmentsJSONLFile, TranscriptsCSVFile, SegmentsCSVFile, SummaryFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing export %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("export %s is empty", name)
		}
	}
}
