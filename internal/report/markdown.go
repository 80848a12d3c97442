package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/factbase/factbase/internal/model"
)

// topSpeakerRows bounds the speaker table in the summary.
const topSpeakerRows = 10

// MarkdownExporter writes a corpus summary for documentation and
// sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables and headers beat hand-rolled
// string concatenation once the summary grows more sections.
type MarkdownExporter struct {
	output io.Writer
}

// NewMarkdownExporter creates a MarkdownExporter writing to output.
func NewMarkdownExporter(output io.Writer) *MarkdownExporter {
	return &MarkdownExporter{output: output}
}

// Export writes the corpus summary.
func (e *MarkdownExporter) Export(transcripts []*model.Transcript) (int, error) {
	md := markdown.NewMarkdown(e.output)

	md.H1("Transcript Corpus Summary")
	md.PlainText("")

	e.writeTotals(md, transcripts)
	e.writeTopSpeakers(md, transcripts)
	e.writeRecent(md, transcripts)

	return len(transcripts), md.Build()
}

// writeTotals writes the corpus-level counters.
func (e *MarkdownExporter) writeTotals(md *markdown.Markdown, transcripts []*model.Transcript) {
	segments := 0
	seconds := 0
	for _, tr := range transcripts {
		segments += len(tr.Segments)
		seconds += tr.DurationSeconds
	}

	md.H2("Totals")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Transcripts", strconv.Itoa(len(transcripts))},
			{"Segments", strconv.Itoa(segments)},
			{"Spoken time", fmt.Sprintf("%.1f hours", float64(seconds)/3600)},
		},
	})
	md.PlainText("")
}

// writeTopSpeakers writes the busiest speakers across the corpus.
func (e *MarkdownExporter) writeTopSpeakers(md *markdown.Markdown, transcripts []*model.Transcript) {
	type total struct {
		name    string
		seconds int
		words   int
	}
	byName := make(map[string]*total)
	for _, tr := range transcripts {
		for i := range tr.Speakers {
			sp := &tr.Speakers[i]
			agg, ok := byName[sp.Name]
			if !ok {
				agg = &total{name: sp.Name}
				byName[sp.Name] = agg
			}
			agg.seconds += sp.Seconds
			agg.words += sp.Words
		}
	}

	totals := make([]*total, 0, len(byName))
	for _, agg := range byName {
		totals = append(totals, agg)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].seconds != totals[j].seconds {
			return totals[i].seconds > totals[j].seconds
		}
		return totals[i].name < totals[j].name
	})
	if len(totals) > topSpeakerRows {
		totals = totals[:topSpeakerRows]
	}

	rows := make([][]string, 0, len(totals))
	for _, agg := range totals {
		rows = append(rows, []string{
			agg.name,
			strconv.Itoa(agg.seconds),
			strconv.Itoa(agg.words),
		})
	}

	md.H2("Top Speakers")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Speaker", "Seconds", "Words"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecent lists the newest transcripts by date.
func (e *MarkdownExporter) writeRecent(md *markdown.Markdown, transcripts []*model.Transcript) {
	sorted := make([]*model.Transcript, len(transcripts))
	copy(sorted, transcripts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > topSpeakerRows {
		sorted = sorted[:topSpeakerRows]
	}

	rows := make([][]string, 0, len(sorted))
	for _, tr := range sorted {
		rows = append(rows, []string{tr.Date, tr.Title, tr.ID})
	}

	md.H2("Recent Transcripts")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Title", "ID"},
		Rows:   rows,
	})
}
