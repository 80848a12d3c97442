package extract

import "testing"

// TestParseTimestampRange tests timestamp token parsing.
func TestParseTimestampRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantStart *int
		wantEnd   *int
		wantDur   *int
	}{
		{
			name:      "range with explicit duration",
			input:     "00:00:00-00:00:26 (27 sec)",
			wantStart: intPtr(0),
			wantEnd:   intPtr(26),
			wantDur:   intPtr(27),
		},
		{
			name:      "bare start",
			input:     "01:02:03",
			wantStart: intPtr(3723),
		},
		{
			name:      "hour boundary above two digits",
			input:     "99:59:59-100:00:00 (1 sec)",
			wantStart: intPtr(359999),
			wantEnd:   intPtr(360000),
			wantDur:   intPtr(1),
		},
		{
			name:      "token embedded in text",
			input:     "00:01:00-00:01:30 Reporter: a question",
			wantStart: intPtr(60),
			wantEnd:   intPtr(90),
		},
		{
			name:      "range without duration",
			input:     "00:10:00-00:12:00",
			wantStart: intPtr(600),
			wantEnd:   intPtr(720),
		},
		{
			name:  "no token",
			input: "just some prose",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start, end, dur := ParseTimestampRange(tt.input)
			checkIntPtr(t, "start", start, tt.wantStart)
			checkIntPtr(t, "end", end, tt.wantEnd)
			checkIntPtr(t, "duration", dur, tt.wantDur)
		})
	}
}

func checkIntPtr(t *testing.T, field string, got, want *int) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Errorf("%s = %v, want %v", field, fmtPtr(got), fmtPtr(want))
	case *got != *want:
		t.Errorf("%s = %d, want %d", field, *got, *want)
	}
}

func fmtPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// TestStripTimestampToken tests token removal from segment bodies.
func TestStripTimestampToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "leading token removed",
			input: "00:00:00-00:00:05 (5 sec) Thank you.",
			want:  " Thank you.",
		},
		{
			name:  "bare token removed with trailing space",
			input: "01:02:03 Speaker: text",
			want:  "Speaker: text",
		},
		{
			name:  "no token is a no-op",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := stripTimestampToken(tt.input); got != tt.want {
				t.Errorf("stripTimestampToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
