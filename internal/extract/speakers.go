package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/factbase/factbase/internal/model"
)

// AggregateSpeakers computes per-speaker totals across the segments.
// Segments without a speaker label are attributed to "Unknown". The
// percentage is each speaker's share of total segment seconds (floored at
// one second to guard the empty case), rounded to two decimals. Results
// sort by seconds descending, then name ascending.
func AggregateSpeakers(segments []model.Segment) []model.SpeakerAggregate {
	totalSeconds := 0
	for i := range segments {
		if segments[i].Duration != nil {
			totalSeconds += *segments[i].Duration
		}
	}
	if totalSeconds < 1 {
		totalSeconds = 1
	}

	byName := make(map[string]*model.SpeakerAggregate)
	for i := range segments {
		seg := &segments[i]
		name := seg.SpeakerName
		if name == "" {
			name = "Unknown"
		}

		agg, ok := byName[name]
		if !ok {
			agg = &model.SpeakerAggregate{
				Name:      name,
				SpeakerID: SpeakerID(seg.SpeakerName),
			}
			byName[name] = agg
		}

		sentences := strings.Count(seg.Text, ".") + strings.Count(seg.Text, "!")
		if sentences < 1 {
			sentences = 1
		}
		agg.Sentences += sentences
		agg.Words += len(strings.Fields(seg.Text))
		if seg.Duration != nil {
			agg.Seconds += *seg.Duration
		}
	}

	out := make([]model.SpeakerAggregate, 0, len(byName))
	for _, agg := range byName {
		agg.Percentage = math.Round(10000*float64(agg.Seconds)/float64(totalSeconds)) / 100
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Name < out[j].Name
	})
	return out
}
