// Package search translates user search expressions into full-text
// index queries and produces ranked, paginated, snippeted results.
//
// The translation is deliberately thin: field prefixes are mapped onto
// indexed column names and everything else passes through unmodified, so
// boolean operators, phrase quoting, and prefix wildcards keep the
// semantics of the underlying FTS5 engine. Structured filters (speakers,
// date range, topic, entity, minimum duration) compose as ANDed SQL
// predicates around the MATCH expression.
package search
