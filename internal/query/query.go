package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"decisiondesk/internal/classify"
	"decisiondesk/internal/dates"
	"decisiondesk/internal/record"
)

// Criteria selects a view of the collection. Zero values pass everything:
// an empty (or "all") status, an empty (or "all") risk, and empty search
// text each match every record.
type Criteria struct {
	// Status is an exact match against the status field.
	Status string
	// Risk is "high" to keep only risk signals, "ok" to keep only the rest.
	Risk string
	// Text is a case-insensitive substring search over the record's
	// descriptive fields.
	Text string
}

// Filter returns the records matching all criteria, preserving input order.
func Filter(records []record.Decision, c Criteria, today time.Time, p classify.Policy) []record.Decision {
	status := strings.TrimSpace(c.Status)
	risk := strings.ToLower(strings.TrimSpace(c.Risk))
	fold := cases.Fold()
	text := fold.String(strings.TrimSpace(c.Text))

	out := make([]record.Decision, 0, len(records))
	for _, d := range records {
		if status != "" && status != "all" && d.Status != status {
			continue
		}
		switch risk {
		case "high":
			if !classify.IsRiskSignal(d, today, p) {
				continue
			}
		case "ok":
			if classify.IsRiskSignal(d, today, p) {
				continue
			}
		}
		if text != "" && !strings.Contains(fold.String(haystack(d)), text) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func haystack(d record.Decision) string {
	parts := []string{
		d.Domain, d.Status, d.Impact,
		d.Question, d.Recommendation, d.Reason, d.Guardrails,
		d.Outcome, d.Learning,
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// SortMode selects a display order.
type SortMode string

const (
	// SortNewest is the default dashboard order.
	SortNewest         SortMode = "newest"
	SortOldest         SortMode = "oldest"
	SortConfidenceDesc SortMode = "confidence-desc"
	SortConfidenceAsc  SortMode = "confidence-asc"
	// SortReviewDateAsc is the queue order: soonest due first, records
	// without a usable review date last.
	SortReviewDateAsc SortMode = "review-date"
)

// Sort returns a sorted copy of the collection; the input is not mutated.
// Unknown modes fall back to newest-first.
func Sort(records []record.Decision, mode SortMode) []record.Decision {
	out := make([]record.Decision, len(records))
	copy(out, records)

	var less func(a, b record.Decision) bool
	switch mode {
	case SortOldest:
		less = func(a, b record.Decision) bool { return a.CreatedAt < b.CreatedAt }
	case SortConfidenceAsc:
		less = func(a, b record.Decision) bool { return a.ConfidenceOrZero() < b.ConfidenceOrZero() }
	case SortConfidenceDesc:
		less = func(a, b record.Decision) bool { return a.ConfidenceOrZero() > b.ConfidenceOrZero() }
	case SortReviewDateAsc:
		less = func(a, b record.Decision) bool {
			da, aok := dates.Parse(a.ReviewDate)
			db, bok := dates.Parse(b.ReviewDate)
			if aok != bok {
				return aok
			}
			if !aok {
				return a.CreatedAt > b.CreatedAt
			}
			if !da.Equal(db) {
				return da.Before(db)
			}
			return a.CreatedAt > b.CreatedAt
		}
	default:
		less = func(a, b record.Decision) bool { return a.CreatedAt > b.CreatedAt }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// StatusValues returns the distinct statuses observed in the collection,
// sorted, for the UI to build its filter options from.
func StatusValues(records []record.Decision) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, d := range records {
		if d.Status == "" {
			continue
		}
		if _, ok := seen[d.Status]; ok {
			continue
		}
		seen[d.Status] = struct{}{}
		out = append(out, d.Status)
	}
	sort.Strings(out)
	return out
}
