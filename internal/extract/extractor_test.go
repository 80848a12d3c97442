package extract

import (
	"strings"
	"testing"
)

// sampleHTML mirrors the shape of a transcript detail page: boilerplate
// chrome around a timestamped transcript container.
const sampleHTML = `<!DOCTYPE html>
<html>
<head><title>Site | Donald Trump Press Conference</title></head>
<body>
<nav><a href="/">Home</a><a href="/transcripts/">Transcripts</a></nav>
<header>Site chrome that should be stripped</header>
<main>
  <h1>Donald Trump Press Conference</h1>
  <time datetime="2023-05-01T10:00:00Z">May 1, 2023</time>
  <div class="transcript">
    <p>00:00:00-00:00:05 (5 sec) Donald Trump: Well, thank you very much everyone.</p>
    <p>00:00:05-00:00:10 Reporter: Mr. President, about immigration?</p>
    <p>00:00:10 Donald Trump: We are working on strong immigration policies.</p>
  </div>
</main>
<footer>Copyright notice</footer>
</body>
</html>`

// TestExtract tests whole-document extraction.
func TestExtract(t *testing.T) {
	t.Parallel()

	tr, err := Extract(sampleHTML, "https://rollcall.com/factbase/trump/transcript/press-conference-may-1-2023/")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if tr.ID != "press-conference-may-1-2023" {
		t.Errorf("id = %q, want slug", tr.ID)
	}
	if tr.Title != "Donald Trump Press Conference" {
		t.Errorf("title = %q", tr.Title)
	}
	if tr.Date != "2023-05-01" {
		t.Errorf("date = %q, want 2023-05-01", tr.Date)
	}

	if len(tr.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tr.Segments))
	}

	// Order values are 1..N with no gaps.
	for i, seg := range tr.Segments {
		if seg.Order != i+1 {
			t.Errorf("segment %d order = %d, want %d", i, seg.Order, i+1)
		}
	}

	first := tr.Segments[0]
	if first.SpeakerName != "Donald Trump" {
		t.Errorf("first speaker = %q", first.SpeakerName)
	}
	if first.StartTime != 0 || first.EndTime == nil || *first.EndTime != 5 {
		t.Errorf("first segment times = %d/%v", first.StartTime, first.EndTime)
	}
	if first.Duration == nil || *first.Duration != 5 {
		t.Errorf("first segment duration = %v", first.Duration)
	}
	if first.Text != "Well, thank you very much everyone." {
		t.Errorf("first segment text = %q", first.Text)
	}

	// The open-ended final segment keeps a nil end time.
	last := tr.Segments[2]
	if last.StartTime != 10 {
		t.Errorf("last start = %d", last.StartTime)
	}
	if last.EndTime != nil {
		t.Errorf("last end = %v, want open-ended", *last.EndTime)
	}

	if tr.DurationSeconds != 10 {
		t.Errorf("duration = %d, want 10", tr.DurationSeconds)
	}
	if !strings.Contains(tr.FullText, "immigration policies") {
		t.Errorf("full text missing segment body: %q", tr.FullText)
	}

	if len(tr.Speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %+v", tr.Speakers)
	}
	if tr.Speakers[0].Name != "Donald Trump" {
		t.Errorf("top speaker = %q", tr.Speakers[0].Name)
	}
}

// TestExtractEndTimeInference tests the post-pass that closes open segments.
func TestExtractEndTimeInference(t *testing.T) {
	t.Parallel()

	html := `<html><body><div>
	<p>00:00:00 Alpha: first</p>
	<p>00:00:30 Beta: second</p>
	<p>00:01:00 Alpha: third</p>
	</div></body></html>`

	tr, err := Extract(html, "https://example.com/t/inference")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(tr.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(tr.Segments))
	}

	if tr.Segments[0].EndTime == nil || *tr.Segments[0].EndTime != 30 {
		t.Errorf("first end = %v, want 30", tr.Segments[0].EndTime)
	}
	if tr.Segments[0].Duration == nil || *tr.Segments[0].Duration != 30 {
		t.Errorf("first duration = %v, want 30", tr.Segments[0].Duration)
	}
	if tr.Segments[1].EndTime == nil || *tr.Segments[1].EndTime != 60 {
		t.Errorf("second end = %v, want 60", tr.Segments[1].EndTime)
	}
	if tr.Segments[2].EndTime != nil {
		t.Errorf("final segment should stay open-ended")
	}
}

// TestExtractMalformed tests field-independent degradation.
func TestExtractMalformed(t *testing.T) {
	t.Parallel()

	t.Run("document with no timestamps yields zero segments", func(t *testing.T) {
		t.Parallel()

		tr, err := Extract("<html><body><p>No transcript here.</p></body></html>",
			"https://example.com/t/empty")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if len(tr.Segments) != 0 {
			t.Errorf("expected no segments, got %d", len(tr.Segments))
		}
		if tr.FullText != "" {
			t.Errorf("expected empty full text, got %q", tr.FullText)
		}
		if tr.DurationSeconds != 0 {
			t.Errorf("expected zero duration, got %d", tr.DurationSeconds)
		}
	})

	t.Run("missing title and date degrade to empty", func(t *testing.T) {
		t.Parallel()

		tr, err := Extract("<html><body><p>00:00:00 hello.</p></body></html>",
			"https://example.com/t/bare")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if tr.Title != "" {
			t.Errorf("title = %q, want empty", tr.Title)
		}
		if tr.Date != "" {
			t.Errorf("date = %q, want empty", tr.Date)
		}
		if len(tr.Segments) != 1 {
			t.Errorf("expected 1 segment, got %d", len(tr.Segments))
		}
	})

	t.Run("segment without speaker label", func(t *testing.T) {
		t.Parallel()

		tr, err := Extract("<html><body><p>00:00:00-00:00:10 just narration here.</p></body></html>",
			"https://example.com/t/nospeaker")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if len(tr.Segments) != 1 {
			t.Fatalf("expected 1 segment, got %d", len(tr.Segments))
		}
		if tr.Segments[0].SpeakerName != "" {
			t.Errorf("speaker = %q, want empty", tr.Segments[0].SpeakerName)
		}
		if tr.Speakers[0].Name != "Unknown" {
			t.Errorf("aggregate bucket = %q, want Unknown", tr.Speakers[0].Name)
		}
	})
}

// TestTranscriptID tests id derivation.
func TestTranscriptID(t *testing.T) {
	t.Parallel()

	t.Run("uses final path segment", func(t *testing.T) {
		t.Parallel()

		got := TranscriptID("https://rollcall.com/factbase/trump/transcript/some-slug/")
		if got != "some-slug" {
			t.Errorf("TranscriptID() = %q, want some-slug", got)
		}
	})

	t.Run("hash fallback for empty segment", func(t *testing.T) {
		t.Parallel()

		got := TranscriptID("")
		if len(got) != 16 {
			t.Errorf("expected 16-char hash fallback, got %q", got)
		}
	})

	t.Run("stable across calls", func(t *testing.T) {
		t.Parallel()

		if TranscriptID("https://a/b") != TranscriptID("https://a/b") {
			t.Error("id derivation not stable")
		}
	})
}

// TestNormalizeWhitespace tests text cleanup.
func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "horizontal runs collapse", input: "a \t  b", want: "a b"},
		{name: "invisible characters removed", input: "a\u200Bb\u00ADc\uFEFF", want: "abc"},
		{name: "blank line runs collapse", input: "a\n \n\n\nb", want: "a\n\nb"},
		{name: "trimmed", input: "  a  ", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeWhitespace(tt.input); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
