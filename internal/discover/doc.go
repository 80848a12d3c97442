// Package discover drives a headless browser session against a listing
// page and harvests transcript detail links.
//
// Discovery is a single logical session: each cycle clicks any "load
// more" control, runs a list of scroll strategies to coax lazily loaded
// content, waits a settle interval, then collects every anchor matching
// the detail-URL pattern. The loop terminates when the discovered set
// reaches its cap or when several consecutive cycles make no progress.
// Browser interactions return explicit results instead of panicking or
// swallowing errors, so the caller decides whether absence of a control
// is expected.
package discover
