package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/factbase/factbase/internal/model"
)

// boilerplateSelector lists structural elements removed before extraction.
const boilerplateSelector = "nav, header, footer, aside, script, style"

// earlyTimestampRe detects a bare HH:MM:SS token used to locate the
// segmentation container.
var earlyTimestampRe = regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`)

// speakerLabelRe matches a short capitalized "Name:" label at the start of
// a segment body.
var speakerLabelRe = regexp.MustCompile(`^([A-Z][A-Za-z.\-\s']{2,40}):\s*`)

// Extract parses raw transcript markup into a structured record.
// Every field degrades independently: a missing title, date, or speaker
// label yields an empty value, and a document with no recognizable
// timestamps yields a record with zero segments rather than an error.
func Extract(rawHTML, rawURL string) (*model.Transcript, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	doc.Find(boilerplateSelector).Remove()

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	date := extractDate(doc)

	segments := extractSegments(findContainer(doc))

	bodies := make([]string, 0, len(segments))
	for i := range segments {
		bodies = append(bodies, segments[i].Text)
	}
	fullText := NormalizeWhitespace(strings.Join(bodies, "\n\n"))

	duration := 0
	if n := len(segments); n > 0 {
		last := &segments[n-1]
		if last.EndTime != nil {
			duration = *last.EndTime
		} else {
			duration = last.StartTime
		}
	}

	return &model.Transcript{
		ID:              TranscriptID(rawURL),
		URL:             rawURL,
		Title:           title,
		Date:            date,
		DurationSeconds: duration,
		FullText:        fullText,
		RawHTML:         rawHTML,
		Segments:        segments,
		Speakers:        AggregateSpeakers(segments),
		Topics:          []string{},
		Entities:        []string{},
	}, nil
}

// findContainer selects the smallest element whose text still contains
// every HH:MM:SS token in the document. Elements are visited in document
// order; each full-count match that is a descendant of the current
// candidate narrows it. Defaults to the whole document when the page has
// no timestamps at all.
func findContainer(doc *goquery.Document) *goquery.Selection {
	total := len(earlyTimestampRe.FindAllString(doc.Text(), -1))
	if total == 0 {
		return doc.Selection
	}

	var container *goquery.Selection
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(earlyTimestampRe.FindAllString(s.Text(), total)) < total {
			return
		}
		if container == nil || isDescendant(container, s) {
			container = s
		}
	})

	if container == nil {
		return doc.Selection
	}
	return container
}

// isDescendant reports whether sel's node sits below anc's node.
func isDescendant(anc, sel *goquery.Selection) bool {
	if len(anc.Nodes) == 0 || len(sel.Nodes) == 0 {
		return false
	}
	for p := sel.Nodes[0].Parent; p != nil; p = p.Parent {
		if p == anc.Nodes[0] {
			return true
		}
	}
	return false
}

// extractSegments walks the container's text nodes and turns every
// timestamped block into a segment. Text nodes without a timestamp token
// are skipped. A post-pass infers missing end times from the next
// segment's start and fills durations.
func extractSegments(container *goquery.Selection) []model.Segment {
	var segments []model.Segment

	for _, root := range container.Nodes {
		walkTextNodes(root, func(block string) {
			start, end, dur := ParseTimestampRange(block)
			if start == nil {
				return
			}

			text := strings.TrimSpace(stripTimestampToken(block))

			speaker := ""
			if m := speakerLabelRe.FindStringSubmatch(text); m != nil {
				speaker = strings.TrimSpace(m[1])
				text = text[len(m[0]):]
			}

			if dur != nil && *dur < 0 {
				dur = nil
			}
			if dur == nil && end != nil {
				d := *end - *start
				if d < 0 {
					d = 0
				}
				dur = &d
			}

			segments = append(segments, model.Segment{
				Order:       len(segments) + 1,
				SpeakerName: speaker,
				SpeakerID:   SpeakerID(speaker),
				StartTime:   *start,
				EndTime:     end,
				Duration:    dur,
				Text:        NormalizeWhitespace(text),
			})
		})
	}

	// Infer open end times from the following segment; the final segment
	// may stay open-ended.
	for i := range segments {
		seg := &segments[i]
		if seg.EndTime == nil && i+1 < len(segments) {
			next := segments[i+1].StartTime
			seg.EndTime = &next
		}
		if seg.EndTime != nil && seg.Duration == nil {
			d := *seg.EndTime - seg.StartTime
			if d < 0 {
				d = 0
			}
			seg.Duration = &d
		}
	}

	return segments
}

// walkTextNodes visits every non-empty trimmed text node under n in
// document order.
func walkTextNodes(n *html.Node, visit func(string)) {
	if n.Type == html.TextNode {
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			visit(trimmed)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkTextNodes(c, visit)
	}
}
