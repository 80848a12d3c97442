package discover

// InteractionResult reports how a single browser interaction ended.
// Absence of an optional control (a consent banner that never appeared,
// a "load more" button on the last page) is a normal outcome, not an
// error, so helpers return one of these instead of an error value.
type InteractionResult int

const (
	// Found means the element existed and the interaction completed.
	Found InteractionResult = iota

	// NotFound means the element was absent or the interaction failed.
	NotFound

	// TimedOut means the interaction ran out of time before completing.
	TimedOut
)

// String returns the lowercase name of the result.
func (r InteractionResult) String() string {
	switch r {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
