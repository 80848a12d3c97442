// Package ledger maintains the persisted set of discovered detail URLs.
//
// The ledger is a deduplicated set with a deterministic ordering rule: URLs
// whose final path segment carries a parseable date sort newest first, so
// fresh content floats to the top of every fetch run; URLs without a date
// keep their relative position from the previously persisted list and sort
// after the dated block. Merging is idempotent - merging with no new input
// reproduces the prior list byte for byte.
//
// Persistence is one JSON object per line ({"url": "..."}), written
// atomically via a temp file and rename.
package ledger
