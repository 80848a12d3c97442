package extract

import (
	"regexp"
	"strconv"
)

// timestampRe matches a timestamp token of the form
// "HH:MM:SS[-HH:MM:SS][ (N sec)]". Hours are two-or-more digits so very
// long recordings (beyond 99 hours) still parse.
var timestampRe = regexp.MustCompile(`(\d{2,3}):(\d{2}):(\d{2})(?:-(\d{2,3}):(\d{2}):(\d{2}))?\s*(?:\((\d+)\s*sec\))?`)

// ParseTimestampRange extracts (start, end, duration) seconds from the
// first timestamp token in s. Start is nil when no token is present; end
// and duration are nil when their optional parts are absent.
func ParseTimestampRange(s string) (start, end, duration *int) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return nil, nil, nil
	}

	st := toSeconds(m[1], m[2], m[3])
	start = &st

	if m[4] != "" {
		e := toSeconds(m[4], m[5], m[6])
		end = &e
	}
	if m[7] != "" {
		if d, err := strconv.Atoi(m[7]); err == nil {
			duration = &d
		}
	}
	return start, end, duration
}

// stripTimestampToken removes the first timestamp token from s.
func stripTimestampToken(s string) string {
	loc := timestampRe.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

func toSeconds(h, m, s string) int {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	return hh*3600 + mm*60 + ss
}
