package search

import "testing"

// TestTranslate tests field-prefix mapping and passthrough behavior.
func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "empty matches nothing", query: "", want: `""`},
		{name: "blank matches nothing", query: "   ", want: `""`},
		{name: "plain terms pass through", query: "immigration policy", want: "immigration policy"},
		{name: "phrase passes through", query: `"press conference"`, want: `"press conference"`},
		{name: "prefix wildcard passes through", query: "immigra*", want: "immigra*"},
		{name: "speaker prefix is mapped", query: `speaker:"Reporter"`, want: `speaker_name:"Reporter"`},
		{name: "speaker prefix is case insensitive", query: `Speaker:reporter`, want: `speaker_name:reporter`},
		{name: "title prefix passes through", query: `title:"donald trump"`, want: `title:"donald trump"`},
		{name: "text prefix passes through", query: `text:economy`, want: `text:economy`},
		{name: "and not becomes binary not", query: `title:"donald trump" AND NOT text:"unrelated"`, want: `title:"donald trump" NOT text:"unrelated"`},
		{name: "lowercase and not", query: `a and not b`, want: `a NOT b`},
		{name: "boolean operators pass through", query: `economy OR jobs`, want: `economy OR jobs`},
		{name: "space before colon tolerated", query: `speaker : reporter`, want: `speaker_name: reporter`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Translate(tt.query); got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
