package model

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

// TestFormatTimestamp tests HH:MM:SS rendering.
func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00"},
		{name: "minutes and seconds", seconds: 3723, want: "01:02:03"},
		{name: "large hour value is not wrapped", seconds: 359999, want: "99:59:59"},
		{name: "negative clamps to zero", seconds: -5, want: "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

// TestTranscriptRenderText tests the plain-text rendering format.
func TestTranscriptRenderText(t *testing.T) {
	t.Parallel()

	t.Run("renders title and timestamped lines", func(t *testing.T) {
		t.Parallel()

		tr := &Transcript{
			ID:    "sample",
			Title: "Press Conference",
			Segments: []Segment{
				{Order: 1, SpeakerName: "Donald Trump", StartTime: 0, EndTime: intPtr(5), Text: "Thank you."},
				{Order: 2, SpeakerName: "Reporter", StartTime: 5, EndTime: intPtr(10), Text: "A question."},
			},
		}

		got := tr.RenderText()
		want := "Press Conference\n\n" +
			"00:00:00-00:00:05 Donald Trump: Thank you.\n" +
			"00:00:05-00:00:10 Reporter: A question."
		if got != want {
			t.Errorf("RenderText() = %q, want %q", got, want)
		}
	})

	t.Run("missing end time repeats start time", func(t *testing.T) {
		t.Parallel()

		tr := &Transcript{
			ID:    "open-ended",
			Title: "Remarks",
			Segments: []Segment{
				{Order: 1, SpeakerName: "Speaker", StartTime: 60, Text: "Closing words."},
			},
		}

		if !strings.Contains(tr.RenderText(), "00:01:00-00:01:00 Speaker: Closing words.") {
			t.Errorf("expected repeated start time in %q", tr.RenderText())
		}
	})

	t.Run("empty title falls back to id", func(t *testing.T) {
		t.Parallel()

		tr := &Transcript{ID: "abc123"}
		if !strings.HasPrefix(tr.RenderText(), "abc123\n\n") {
			t.Errorf("expected id fallback, got %q", tr.RenderText())
		}
	})
}
