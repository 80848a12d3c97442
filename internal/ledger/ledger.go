package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultDetailPattern matches transcript detail-page URLs, as opposed to
// listing pages.
var DefaultDetailPattern = regexp.MustCompile(`^https?://rollcall\.com/factbase/.+/transcript/[a-z0-9\-]+/?$`)

// FileName is the ledger file name inside the output directory.
const FileName = "discovered_urls.jsonl"

// entry is the persisted line format.
type entry struct {
	URL string `json:"url"`
}

// isoDateRe matches an ISO-shaped date substring inside a URL slug.
var isoDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// monthDateRe matches the "month-name-dd-yyyy" slug form, e.g.
// "press-conference-january-5-2024".
var monthDateRe = regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)-(\d{1,2})-(\d{4})`)

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// slugDate is a (year, month, day) triple parsed from a URL slug.
type slugDate struct {
	year, month, day int
}

// after reports whether d sorts after other chronologically.
func (d slugDate) after(other slugDate) bool {
	if d.year != other.year {
		return d.year > other.year
	}
	if d.month != other.month {
		return d.month > other.month
	}
	return d.day > other.day
}

// parseSlugDate heuristically extracts a date from the URL's final path
// segment. The ISO-shaped form is tried first, then the month-name form.
func parseSlugDate(rawURL string) (slugDate, bool) {
	slug := finalSegment(rawURL)
	if slug == "" {
		return slugDate{}, false
	}

	if m := isoDateRe.FindStringSubmatch(slug); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			return slugDate{year: y, month: mo, day: d}, true
		}
	}

	if m := monthDateRe.FindStringSubmatch(strings.ToLower(slug)); m != nil {
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if d >= 1 && d <= 31 {
			return slugDate{year: y, month: monthNumbers[m[1]], day: d}, true
		}
	}

	return slugDate{}, false
}

// finalSegment returns the last path segment of a URL, ignoring a trailing
// slash. Falls back to naive splitting when the URL does not parse.
func finalSegment(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// Merge unions the previously persisted list with newly discovered URLs and
// returns the deduplicated, deterministically ordered result.
//
// Ordering rule: entries with a parseable slug date sort by date descending,
// ties broken by URL; entries without a date follow, keeping their relative
// position from the prior list (URLs never seen before sort last among the
// undated block), ties broken by URL. The rule is idempotent: merging the
// result with no new input reproduces it exactly.
func Merge(existing, discovered []string) []string {
	seen := make(map[string]bool, len(existing)+len(discovered))
	union := make([]string, 0, len(existing)+len(discovered))
	for _, lists := range [][]string{existing, discovered} {
		for _, u := range lists {
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			union = append(union, u)
		}
	}

	priorIndex := make(map[string]int, len(existing))
	for i, u := range existing {
		if _, ok := priorIndex[u]; !ok {
			priorIndex[u] = i
		}
	}

	type ordered struct {
		url      string
		date     slugDate
		dated    bool
		priorIdx int
	}

	items := make([]ordered, 0, len(union))
	for _, u := range union {
		d, ok := parseSlugDate(u)
		idx, known := priorIndex[u]
		if !known {
			idx = math.MaxInt
		}
		items = append(items, ordered{url: u, date: d, dated: ok, priorIdx: idx})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.dated && !b.dated:
			return true
		case !a.dated && b.dated:
			return false
		case a.dated:
			if a.date != b.date {
				return a.date.after(b.date)
			}
			return a.url < b.url
		default:
			if a.priorIdx != b.priorIdx {
				return a.priorIdx < b.priorIdx
			}
			return a.url < b.url
		}
	})

	result := make([]string, len(items))
	for i, it := range items {
		result[i] = it.url
	}
	return result
}

// Load reads the persisted ledger. A missing file yields an empty list.
// Malformed lines are skipped rather than failing the whole load.
func Load(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // Ledger path comes from our own config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if e.URL != "" {
			urls = append(urls, e.URL)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return urls, nil
}

// Save writes the ledger atomically: the list is written to a temp file in
// the same directory and renamed over the destination.
func Save(path string, urls []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Best-effort cleanup on early return

	w := bufio.NewWriter(tmp)
	for _, u := range urls {
		line, err := json.Marshal(entry{URL: u})
		if err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to encode ledger entry: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write ledger: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// MergeAndPersist loads the persisted list from path, merges the newly
// discovered URLs into it, saves the result, and returns the ordered list.
func MergeAndPersist(path string, discovered []string) ([]string, error) {
	existing, err := Load(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(existing, discovered)
	if err := Save(path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
