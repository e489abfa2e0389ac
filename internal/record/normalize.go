package record

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"decisiondesk/internal/dates"
)

// CanonicalStatus maps the spellings that accumulated across dashboard
// generations onto the canonical enumeration. The second result reports
// whether the value is the legacy "Reviewed" terminal status, which newer
// records express as Approved plus the reviewed flag.
func CanonicalStatus(value string) (string, bool) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "proposed":
		return StatusProposed, false
	case "approved":
		return StatusApproved, false
	case "rejected":
		return StatusRejected, false
	case "ignored", "not reviewed", "notreviewed", "not-reviewed":
		return StatusIgnored, false
	case "reviewed":
		return StatusApproved, true
	}
	return v, false
}

// CanonicalImpact maps impact input onto Low/Medium/High, defaulting to
// Medium for anything unrecognized.
func CanonicalImpact(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return ImpactLow
	case "high":
		return ImpactHigh
	default:
		return ImpactMedium
	}
}

// Normalize coerces a decision into the canonical shape: identity fields
// assigned when absent, statuses and impact canonicalized, text trimmed,
// parseable review dates rewritten in ISO form, and terminal-status stamps
// derived. It is idempotent; normalizing an already-normalized decision
// returns it unchanged.
func Normalize(d Decision) Decision {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().UnixMilli()
	}

	status, legacyReviewed := CanonicalStatus(d.Status)
	d.Status = status
	if legacyReviewed {
		d.Reviewed = true
	}
	d.Impact = CanonicalImpact(d.Impact)

	d.Domain = strings.TrimSpace(d.Domain)
	d.Question = strings.TrimSpace(d.Question)
	d.Recommendation = strings.TrimSpace(d.Recommendation)
	d.Reason = strings.TrimSpace(d.Reason)
	d.Guardrails = strings.TrimSpace(d.Guardrails)
	d.Outcome = strings.TrimSpace(d.Outcome)
	d.OutcomeNotes = strings.TrimSpace(d.OutcomeNotes)
	d.Learning = strings.TrimSpace(d.Learning)

	// Unparseable review dates are kept verbatim and treated as absent by
	// the classification rules.
	d.ReviewDate = strings.TrimSpace(d.ReviewDate)
	if due, ok := dates.Parse(d.ReviewDate); ok {
		d.ReviewDate = dates.Format(due)
	}

	// Rejected is terminal at creation: the review loop never runs for it.
	if d.Status == StatusRejected {
		d.Reviewed = true
	}
	if d.Reviewed && d.ReviewedAt == 0 {
		d.ReviewedAt = d.CreatedAt
	}
	if d.Status == StatusIgnored && d.IgnoredAt == 0 {
		d.IgnoredAt = d.CreatedAt
	}

	return d
}
