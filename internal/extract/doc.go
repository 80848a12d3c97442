// Package extract parses fetched transcript markup into structured records.
//
// # Architecture
//
// Extraction is heuristic and field-independent: the title, date, and
// segment list each degrade to empty values on malformed input instead of
// failing the whole document. Segmentation is timestamp-driven - the parser
// locates the smallest element whose leading text contains an HH:MM:SS
// token, then turns every timestamped text node inside it into a Segment.
//
// Design decision: date extraction is a data-driven list of strategies tried
// in priority order (machine-readable attribute, lenient text parse, document
// scan). Each strategy is a plain function, so they are unit-testable
// independently of a whole-document parse.
package extract
