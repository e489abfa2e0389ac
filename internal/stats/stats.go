package stats

import (
	"math"
	"time"

	"decisiondesk/internal/classify"
	"decisiondesk/internal/record"
)

// Summary holds the dashboard headline numbers.
type Summary struct {
	Total    int
	Open     int
	Upcoming int
	Risk     int
	Ignored  int
	Reviewed int

	// AvgConfidence is the rounded mean confidence over open decisions
	// that recorded one; nil when none did. Open-only keeps the number a
	// read on current exposure rather than historical noise.
	AvgConfidence *int
}

// Compute derives the summary for a collection as of today. Ignored
// decisions are unreviewed but do not count as open; they sit in their own
// failure bucket and always feed the risk count.
func Compute(records []record.Decision, today time.Time, p classify.Policy) Summary {
	var s Summary
	s.Total = len(records)

	var confSum, confCount int
	for _, d := range records {
		open := classify.IsOpen(d) && d.Status != record.StatusIgnored
		if open {
			s.Open++
			if classify.IsUpcoming(d, today, p) {
				s.Upcoming++
			}
			if d.HasConfidence() {
				confSum += *d.Confidence
				confCount++
			}
		}
		if d.Status == record.StatusIgnored {
			s.Ignored++
		}
		if d.Reviewed {
			s.Reviewed++
		}
		if !d.Reviewed && classify.IsRiskSignal(d, today, p) {
			s.Risk++
		}
	}

	if confCount > 0 {
		avg := int(math.Round(float64(confSum) / float64(confCount)))
		s.AvgConfidence = &avg
	}
	return s
}
