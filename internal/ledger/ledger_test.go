package ledger

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// TestDefaultDetailPattern tests detail-URL matching.
func TestDefaultDetailPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "detail page matches",
			url:  "https://rollcall.com/factbase/trump/transcript/press-conference-january-5-2024/",
			want: true,
		},
		{
			name: "detail page without trailing slash matches",
			url:  "https://rollcall.com/factbase/trump/transcript/remarks-2024-01-05",
			want: true,
		},
		{
			name: "listing page does not match",
			url:  "https://rollcall.com/factbase/transcripts/",
			want: false,
		},
		{
			name: "uppercase slug does not match",
			url:  "https://rollcall.com/factbase/trump/transcript/Remarks",
			want: false,
		},
		{
			name: "other host does not match",
			url:  "https://example.com/factbase/trump/transcript/remarks",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DefaultDetailPattern.MatchString(tt.url); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

// TestParseSlugDate tests the date heuristics on URL slugs.
func TestParseSlugDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		url    string
		want   slugDate
		wantOK bool
	}{
		{
			name:   "iso shaped slug",
			url:    "https://rollcall.com/factbase/trump/transcript/remarks-2024-01-05/",
			want:   slugDate{year: 2024, month: 1, day: 5},
			wantOK: true,
		},
		{
			name:   "month name slug",
			url:    "https://rollcall.com/factbase/trump/transcript/press-conference-january-5-2024/",
			want:   slugDate{year: 2024, month: 1, day: 5},
			wantOK: true,
		},
		{
			name:   "iso takes priority over month form",
			url:    "https://rollcall.com/factbase/trump/transcript/2023-12-31-december-1-2020/",
			want:   slugDate{year: 2023, month: 12, day: 31},
			wantOK: true,
		},
		{
			name:   "no date",
			url:    "https://rollcall.com/factbase/trump/transcript/interview-special/",
			wantOK: false,
		},
		{
			name:   "implausible month rejected",
			url:    "https://rollcall.com/factbase/trump/transcript/doc-2024-99-99/",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := parseSlugDate(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("parseSlugDate(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseSlugDate(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

// TestMerge tests the ordering rule.
func TestMerge(t *testing.T) {
	t.Parallel()

	const (
		jan5  = "https://rollcall.com/factbase/trump/transcript/remarks-2024-01-05/"
		feb10 = "https://rollcall.com/factbase/trump/transcript/speech-2024-02-10/"
		dec1  = "https://rollcall.com/factbase/trump/transcript/rally-december-1-2023/"
		noDA  = "https://rollcall.com/factbase/trump/transcript/interview-alpha/"
		noDB  = "https://rollcall.com/factbase/trump/transcript/interview-beta/"
	)

	t.Run("dated entries sort newest first, undated keep position after", func(t *testing.T) {
		t.Parallel()

		existing := []string{noDB, jan5, noDA}
		discovered := []string{feb10, dec1}

		got := Merge(existing, discovered)
		want := []string{feb10, jan5, dec1, noDB, noDA}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Merge() = %v, want %v", got, want)
		}
	})

	t.Run("never-seen undated entries sort last by URL", func(t *testing.T) {
		t.Parallel()

		got := Merge([]string{noDB}, []string{noDA, jan5})
		want := []string{jan5, noDB, noDA}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Merge() = %v, want %v", got, want)
		}
	})

	t.Run("deduplicates repeated discoveries", func(t *testing.T) {
		t.Parallel()

		got := Merge([]string{jan5}, []string{jan5, jan5, feb10, feb10})
		want := []string{feb10, jan5}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Merge() = %v, want %v", got, want)
		}
	})

	t.Run("merge is idempotent", func(t *testing.T) {
		t.Parallel()

		first := Merge([]string{noDB, jan5, noDA, dec1}, []string{feb10})
		second := Merge(first, nil)
		third := Merge(second, nil)

		if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(second, third) {
			t.Errorf("merge not idempotent: %v / %v / %v", first, second, third)
		}
	})
}

// TestLoadSave tests JSONL round-trip and atomic persistence.
func TestLoadSave(t *testing.T) {
	t.Parallel()

	t.Run("missing file loads as empty", func(t *testing.T) {
		t.Parallel()

		urls, err := Load(filepath.Join(t.TempDir(), FileName))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(urls) != 0 {
			t.Errorf("expected empty ledger, got %v", urls)
		}
	})

	t.Run("round trip preserves order", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), FileName)
		want := []string{
			"https://rollcall.com/factbase/trump/transcript/a-2024-02-10/",
			"https://rollcall.com/factbase/trump/transcript/b-2024-01-05/",
		}
		if err := Save(path, want); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Load() = %v, want %v", got, want)
		}
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), FileName)
		content := `{"url": "https://rollcall.com/factbase/trump/transcript/ok/"}` + "\n" +
			"not json\n" +
			`{"other": "field"}` + "\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got) != 1 || !strings.HasSuffix(got[0], "/ok/") {
			t.Errorf("Load() = %v, want single ok entry", got)
		}
	})
}

// TestMergeAndPersist tests the full merge-save cycle.
func TestMergeAndPersist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)

	first, err := MergeAndPersist(path, []string{
		"https://rollcall.com/factbase/trump/transcript/a-2024-01-05/",
		"https://rollcall.com/factbase/trump/transcript/interview/",
	})
	if err != nil {
		t.Fatalf("MergeAndPersist() error = %v", err)
	}

	// Running again with no new input must produce an identical file.
	second, err := MergeAndPersist(path, nil)
	if err != nil {
		t.Fatalf("MergeAndPersist() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge-persist not idempotent: %v vs %v", first, second)
	}

	// Re-discovering a known URL must not duplicate it.
	third, err := MergeAndPersist(path, []string{first[0]})
	if err != nil {
		t.Fatalf("MergeAndPersist() error = %v", err)
	}
	if len(third) != len(first) {
		t.Errorf("duplicate entry after re-discovery: %v", third)
	}
}
