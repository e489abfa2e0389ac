package dashboard

import (
	"fmt"
	"strings"
	"time"

	"decisiondesk/internal/classify"
	"decisiondesk/internal/dates"
	"decisiondesk/internal/query"
	"decisiondesk/internal/record"
	"decisiondesk/internal/stats"
	"decisiondesk/internal/store"
)

// NotFoundError reports a mutation that referenced an unknown decision id.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("decision %s not found", e.ID)
}

// Dashboard owns the in-memory collection and its durable slot. It assumes
// a single active writer: every mutation runs load-state → mutate → save
// as one synchronous step, and a failed save leaves the in-memory
// collection as it was before the mutation.
type Dashboard struct {
	slot    store.Slot
	policy  classify.Policy
	records []record.Decision

	now func() time.Time
}

// Open loads the collection from the slot. Corrupt or missing stored state
// comes back as an empty collection, never as an error.
func Open(slot store.Slot, policy classify.Policy) (*Dashboard, error) {
	records, err := store.Load(slot)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		slot:    slot,
		policy:  policy,
		records: records,
		now:     time.Now,
	}, nil
}

// Policy returns the classification thresholds in effect.
func (b *Dashboard) Policy() classify.Policy {
	return b.policy
}

// Records returns a copy of the collection in stored order (newest first).
func (b *Dashboard) Records() []record.Decision {
	out := make([]record.Decision, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of decisions.
func (b *Dashboard) Len() int {
	return len(b.records)
}

// Get returns the decision with the given id.
func (b *Dashboard) Get(id string) (record.Decision, bool) {
	for _, d := range b.records {
		if d.ID == id {
			return d, true
		}
	}
	return record.Decision{}, false
}

// Input carries the fields accepted from the form layer for a new
// decision. Out-of-range numerics are clamped here, at input time; reads
// never re-clamp.
type Input struct {
	Domain         string
	Status         string
	Impact         string
	Question       string
	Recommendation string
	Reason         string

	Confidence *int
	ReviewDate string

	Guardrails        string
	GuardrailsDefined bool

	Runway *float64
	Growth *float64
	LTVCAC *float64
}

// AddDecision validates, normalizes, prepends, and persists a new
// decision. The question is required; a Rejected status closes the loop at
// creation and an Ignored status stamps ignoredAt.
func (b *Dashboard) AddDecision(in Input) (record.Decision, error) {
	d := record.Decision{
		ID:             "",
		CreatedAt:      b.now().UnixMilli(),
		Domain:         in.Domain,
		Status:         in.Status,
		Impact:         in.Impact,
		Question:       in.Question,
		Recommendation: in.Recommendation,
		Reason:         in.Reason,
		Confidence:     record.ClampConfidence(in.Confidence),
		ReviewDate:     in.ReviewDate,
		Guardrails:     in.Guardrails,
		Runway:         record.ClampRunway(in.Runway),
		Growth:         record.ClampGrowth(in.Growth),
		LTVCAC:         record.ClampRatio(in.LTVCAC),
	}
	d.GuardrailsDefined = in.GuardrailsDefined
	if err := record.ValidateNew(d); err != nil {
		return record.Decision{}, err
	}
	d = record.Normalize(d)

	return d, b.mutate(func(records []record.Decision) []record.Decision {
		return append([]record.Decision{d}, records...)
	})
}

// UpdateStatus sets a decision's status. Legacy "Reviewed" input marks the
// decision reviewed; a transition to Ignored stamps ignoredAt.
func (b *Dashboard) UpdateStatus(id, status string) (record.Decision, error) {
	idx := b.index(id)
	if idx < 0 {
		return record.Decision{}, NotFoundError{ID: id}
	}

	d := b.records[idx]
	canonical, legacyReviewed := record.CanonicalStatus(status)
	d.Status = canonical
	if legacyReviewed && !d.Reviewed {
		d.Reviewed = true
		d.ReviewedAt = b.now().UnixMilli()
	}
	if canonical == record.StatusIgnored && d.IgnoredAt == 0 {
		d.IgnoredAt = b.now().UnixMilli()
	}
	if canonical == record.StatusRejected && !d.Reviewed {
		d.Reviewed = true
		d.ReviewedAt = b.now().UnixMilli()
	}

	return d, b.replace(idx, d)
}

// MarkReviewed closes the loop on a decision. The outcome is required: no
// outcome, no review. reviewedAt is stamped exactly once; reviewing an
// already-reviewed decision only fills still-empty outcome fields.
func (b *Dashboard) MarkReviewed(id, outcome, notes, learning string) (record.Decision, error) {
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		return record.Decision{}, record.ValidationErrors{{Field: "outcome", Message: "review outcome is required"}}
	}
	idx := b.index(id)
	if idx < 0 {
		return record.Decision{}, NotFoundError{ID: id}
	}

	d := b.records[idx]
	if !d.Reviewed {
		d.Reviewed = true
		d.ReviewedAt = b.now().UnixMilli()
	}
	if d.Outcome == "" {
		d.Outcome = outcome
	}
	if d.OutcomeNotes == "" {
		d.OutcomeNotes = strings.TrimSpace(notes)
	}
	if d.Learning == "" {
		d.Learning = strings.TrimSpace(learning)
	}

	return d, b.replace(idx, d)
}

// DeleteDecision removes a decision. Deleting an absent id is a no-op.
func (b *Dashboard) DeleteDecision(id string) error {
	idx := b.index(id)
	if idx < 0 {
		return nil
	}
	return b.mutate(func(records []record.Decision) []record.Decision {
		out := make([]record.Decision, 0, len(records)-1)
		out = append(out, records[:idx]...)
		return append(out, records[idx+1:]...)
	})
}

// ClearAll empties the collection.
func (b *Dashboard) ClearAll() error {
	return b.mutate(func([]record.Decision) []record.Decision {
		return []record.Decision{}
	})
}

// Stats computes the dashboard summary as of today; a zero today means the
// current date.
func (b *Dashboard) Stats(today time.Time) stats.Summary {
	return stats.Compute(b.records, b.day(today), b.policy)
}

// Filtered returns the matching records in the default display order,
// newest first.
func (b *Dashboard) Filtered(c query.Criteria, today time.Time) []record.Decision {
	matched := query.Filter(b.records, c, b.day(today), b.policy)
	return query.Sort(matched, query.SortNewest)
}

// Queue returns the open, non-ignored decisions ordered soonest due first.
func (b *Dashboard) Queue() []record.Decision {
	var open []record.Decision
	for _, d := range b.records {
		if classify.IsOpen(d) && d.Status != record.StatusIgnored {
			open = append(open, d)
		}
	}
	return query.Sort(open, query.SortReviewDateAsc)
}

// Statuses returns the distinct status values observed in the collection.
func (b *Dashboard) Statuses() []string {
	return query.StatusValues(b.records)
}

func (b *Dashboard) index(id string) int {
	for i, d := range b.records {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (b *Dashboard) replace(idx int, d record.Decision) error {
	return b.mutate(func(records []record.Decision) []record.Decision {
		out := make([]record.Decision, len(records))
		copy(out, records)
		out[idx] = record.Normalize(d)
		return out
	})
}

// mutate applies fn to the collection and persists the result. On a save
// failure the previous collection stays in place, so no partial write is
// ever observable.
func (b *Dashboard) mutate(fn func([]record.Decision) []record.Decision) error {
	next := fn(b.records)
	if err := store.Save(b.slot, next); err != nil {
		return err
	}
	b.records = next
	return nil
}

func (b *Dashboard) day(today time.Time) time.Time {
	if today.IsZero() {
		return dates.Strip(b.now())
	}
	return dates.Strip(today)
}
