package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// TestMergeMatches tests pattern filtering and dedup during harvest.
func TestMergeMatches(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^https://rollcall\.com/factbase/.+/transcript/[a-z0-9\-]+/?$`)

	t.Run("keeps only detail links", func(t *testing.T) {
		t.Parallel()

		found := make(map[string]bool)
		hrefs := []string{
			"https://rollcall.com/factbase/trump/transcript/presser-may-1-2023/",
			"https://rollcall.com/factbase/transcripts/",
			"https://example.com/unrelated",
			"https://rollcall.com/factbase/biden/transcript/remarks-2022/",
		}

		if added := mergeMatches(found, hrefs, pattern); added != 2 {
			t.Errorf("added = %d, want 2", added)
		}
		if len(found) != 2 {
			t.Errorf("set size = %d, want 2", len(found))
		}
	})

	t.Run("repeated harvest adds nothing", func(t *testing.T) {
		t.Parallel()

		found := make(map[string]bool)
		hrefs := []string{
			"https://rollcall.com/factbase/trump/transcript/presser/",
			"https://rollcall.com/factbase/trump/transcript/presser/",
		}

		if added := mergeMatches(found, hrefs, pattern); added != 1 {
			t.Errorf("first pass added = %d, want 1", added)
		}
		if added := mergeMatches(found, hrefs, pattern); added != 0 {
			t.Errorf("second pass added = %d, want 0", added)
		}
	})
}

// TestInteractionResultString tests the result names.
func TestInteractionResultString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result InteractionResult
		want   string
	}{
		{result: Found, want: "found"},
		{result: NotFound, want: "not_found"},
		{result: TimedOut, want: "timed_out"},
		{result: InteractionResult(99), want: "unknown"},
	}

	for _, tt := range tests {
		if got := tt.result.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.result), got, tt.want)
		}
	}
}

// TestSortedKeys tests deterministic set ordering.
func TestSortedKeys(t *testing.T) {
	t.Parallel()

	set := map[string]bool{"c": true, "a": true, "b": true}
	got := sortedKeys(set)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("sortedKeys() = %v", got)
	}
}

// TestNewDefaults tests option application.
func TestNewDefaults(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`.`)
	d := New("https://example.com", pattern,
		WithMaxItems(10),
		WithIdleCycles(3),
	)

	if d.maxItems != 10 {
		t.Errorf("maxItems = %d", d.maxItems)
	}
	if d.idleCycles != 3 {
		t.Errorf("idleCycles = %d", d.idleCycles)
	}
	if !d.headless {
		t.Error("expected headless default")
	}

	// Non-positive values keep defaults.
	d = New("https://example.com", pattern, WithMaxItems(0), WithIdleCycles(-1))
	if d.maxItems != 400 || d.idleCycles != 10 {
		t.Errorf("defaults = %d/%d", d.maxItems, d.idleCycles)
	}
}

// TestClassifyInteraction tests how attempt errors map onto results.
func TestClassifyInteraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want InteractionResult
	}{
		{name: "no error", err: nil, want: Found},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: TimedOut},
		{name: "wrapped deadline", err: fmt.Errorf("click: %w", context.DeadlineExceeded), want: TimedOut},
		{name: "selector missing", err: errors.New("node not found"), want: NotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyInteraction(tt.err); got != tt.want {
				t.Errorf("classifyInteraction(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestWriteEndpoints tests artifact persistence into a directory that
// does not exist yet.
func TestWriteEndpoints(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "state", "artifacts")
	pattern := regexp.MustCompile(`.`)
	d := New("https://example.com", pattern, WithArtifactDir(dir))

	log := &endpointLog{
		StartURL:  "https://example.com",
		Endpoints: []string{"https://example.com/api/b", "https://example.com/api/a"},
	}
	d.writeEndpoints(log)

	data, err := os.ReadFile(filepath.Join(dir, EndpointsFile))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var got endpointLog
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.StartURL != "https://example.com" {
		t.Errorf("start_url = %q", got.StartURL)
	}
	if len(got.Endpoints) != 2 || got.Endpoints[0] != "https://example.com/api/a" {
		t.Errorf("endpoints = %v, want sorted pair", got.Endpoints)
	}
}
