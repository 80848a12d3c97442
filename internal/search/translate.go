package search

import (
	"regexp"
	"strings"
)

// fieldAliases maps user-facing field prefixes onto indexed column names.
// Prefixes already naming a real column pass through untouched.
var fieldAliases = map[string]string{
	"speaker": "speaker_name",
}

// fieldPrefixRe matches a field-scoping prefix like `speaker:` at a word
// boundary, tolerating space between the name and the colon.
var fieldPrefixRe = regexp.MustCompile(`\b([A-Za-z_]+)\s*:`)

// andNotRe rewrites the common `AND NOT` spelling to the bare binary NOT
// the FTS5 grammar actually accepts.
var andNotRe = regexp.MustCompile(`(?i)\bAND\s+NOT\b`)

// Translate converts a user search expression into an FTS5 MATCH
// expression. An empty or blank query becomes a query that matches
// nothing: a blank search box must never return the entire corpus.
func Translate(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return `""`
	}

	query = andNotRe.ReplaceAllString(query, "NOT")

	return fieldPrefixRe.ReplaceAllStringFunc(query, func(m string) string {
		sub := fieldPrefixRe.FindStringSubmatch(m)
		if mapped, ok := fieldAliases[strings.ToLower(sub[1])]; ok {
			return mapped + ":"
		}
		return m
	})
}
