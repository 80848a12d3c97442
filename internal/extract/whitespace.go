package extract

import (
	"crypto/sha1" //nolint:gosec // Not used for security, only for stable short ids
	"encoding/hex"
	"regexp"
	"strings"
)

// invisibleReplacer removes zero-width characters and soft hyphens that
// survive HTML text extraction and would otherwise split search tokens.
var invisibleReplacer = strings.NewReplacer(
	"\uFEFF", "", // byte order mark
	"\u200B", "", // zero width space
	"\u00AD", "", // soft hyphen
	"\u2060", "", // word joiner
)

var (
	horizontalRunRe = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLineRunRe  = regexp.MustCompile(`\n\s*\n+`)
)

// NormalizeWhitespace cleans extracted text: invisible characters are
// removed, runs of horizontal whitespace collapse to a single space, and
// blank-line runs collapse to a double newline. Newlines themselves are
// preserved.
func NormalizeWhitespace(text string) string {
	if text == "" {
		return ""
	}
	text = invisibleReplacer.Replace(text)
	text = horizontalRunRe.ReplaceAllString(text, " ")
	text = blankLineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// sha1_16 returns the first 16 hex characters of the SHA-1 of s.
// Used for speaker ids and as the transcript-id fallback.
func sha1_16(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec // Stable id derivation, not cryptography
	return hex.EncodeToString(sum[:])[:16]
}

// SpeakerID derives the stable id for a speaker name. Empty names map to
// the "unknown" bucket.
func SpeakerID(name string) string {
	if name == "" {
		name = "unknown"
	}
	return sha1_16(strings.ToLower(name))
}

// TranscriptID derives the stable transcript id from the URL's final path
// segment, falling back to a short hash of the whole URL when the segment
// is empty.
func TranscriptID(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	slug := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		slug = trimmed[idx+1:]
	}
	if slug == "" {
		return sha1_16(rawURL)
	}
	return slug
}
