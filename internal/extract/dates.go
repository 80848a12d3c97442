package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// isoShapedRe matches a YYYY-MM-DD shaped substring, with either dash or
// slash separators.
var isoShapedRe = regexp.MustCompile(`(\d{4})[-/](\d{2})[-/](\d{2})`)

// dateStrategy attempts to extract an ISO 8601 date from the document.
// An empty return means the strategy found nothing; the next one is tried.
type dateStrategy struct {
	name string
	fn   func(doc *goquery.Document) string
}

// dateStrategies is tried in priority order; the first non-empty result
// wins.
var dateStrategies = []dateStrategy{
	{name: "time-datetime-attr", fn: dateFromTimeAttr},
	{name: "time-text", fn: dateFromTimeText},
	{name: "document-scan", fn: dateFromDocumentScan},
}

// extractDate runs the strategy list against the document.
func extractDate(doc *goquery.Document) string {
	for _, s := range dateStrategies {
		if d := s.fn(doc); d != "" {
			return d
		}
	}
	return ""
}

// dateFromTimeAttr reads the machine-readable datetime attribute of the
// first time element.
func dateFromTimeAttr(doc *goquery.Document) string {
	attr, ok := doc.Find("time[datetime]").First().Attr("datetime")
	if !ok {
		return ""
	}
	return normalizeDate(attr)
}

// dateFromTimeText leniently parses the visible text of the first time
// element.
func dateFromTimeText(doc *goquery.Document) string {
	return normalizeDate(doc.Find("time").First().Text())
}

// dateFromDocumentScan scans the whole document text for an ISO-shaped
// substring. Last resort: cheap but prone to picking up unrelated dates.
func dateFromDocumentScan(doc *goquery.Document) string {
	m := isoShapedRe.FindStringSubmatch(doc.Text())
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

// normalizeDate converts a date-ish string to ISO 8601 (YYYY-MM-DD).
// An ISO-shaped prefix is taken verbatim; anything else goes through a
// lenient parse. Returns empty when nothing parses.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := isoShapedRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
