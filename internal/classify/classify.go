package classify

import (
	"strings"
	"time"

	"decisiondesk/internal/dates"
	"decisiondesk/internal/record"
)

// Policy carries the classification thresholds. Earlier dashboard variants
// disagreed on the exact numbers; these knobs hold the consolidated values
// and can be overridden from configuration.
type Policy struct {
	// ConfidenceFloor is the confidence below which a decision is
	// inherently risky.
	ConfidenceFloor int
	// UpcomingHorizonDays is the inclusive look-ahead window, counting
	// today, for the upcoming-review flag.
	UpcomingHorizonDays int
	// MinGuardrailChars is the minimum trimmed length for free-text
	// guardrails to count as present.
	MinGuardrailChars int
}

// DefaultPolicy returns the consolidated thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ConfidenceFloor:     60,
		UpcomingHorizonDays: 14,
		MinGuardrailChars:   3,
	}
}

// IsClosed reports whether the decision's loop is closed: rejected at the
// gate, or reviewed. Everything else is open, including unrecognized
// free-text statuses.
func IsClosed(d record.Decision) bool {
	return d.Status == record.StatusRejected || d.Reviewed
}

// IsOpen is the complement of IsClosed.
func IsOpen(d record.Decision) bool {
	return !IsClosed(d)
}

// IsOverdue reports whether the review date has passed without a review.
// Reviewed decisions are never overdue, whatever their review date says.
func IsOverdue(d record.Decision, today time.Time) bool {
	if d.Reviewed {
		return false
	}
	due, ok := dates.Parse(d.ReviewDate)
	if !ok {
		return false
	}
	return dates.DaysBetween(due, today) > 0
}

// IsUpcoming reports whether an open decision's review date falls within
// the horizon, counting today as day zero.
func IsUpcoming(d record.Decision, today time.Time, p Policy) bool {
	if IsClosed(d) {
		return false
	}
	due, ok := dates.Parse(d.ReviewDate)
	if !ok {
		return false
	}
	diff := dates.DaysBetween(today, due)
	return diff >= 0 && diff <= p.UpcomingHorizonDays
}

// HasGuardrails reports whether safeguards are recorded, in either
// representation: enough free text, or the binary flag.
func HasGuardrails(d record.Decision, p Policy) bool {
	return len(strings.TrimSpace(d.Guardrails)) >= p.MinGuardrailChars || d.GuardrailsDefined
}

// IsInherentRisk flags bad inputs at commit time: low confidence, high
// impact, or high impact without guardrails.
func IsInherentRisk(d record.Decision, p Policy) bool {
	if d.HasConfidence() && *d.Confidence < p.ConfidenceFloor {
		return true
	}
	if d.Impact == record.ImpactHigh {
		return true
	}
	if d.Impact == record.ImpactHigh && !HasGuardrails(d, p) {
		return true
	}
	return false
}

// IsRiskSignal is the system-level needs-attention flag. It combines the
// inherent-input test with process risk: a decision cannot escape risk
// accounting by never being reviewed, so overdue and ignored records count
// even when their original inputs looked safe.
func IsRiskSignal(d record.Decision, today time.Time, p Policy) bool {
	if IsInherentRisk(d, p) {
		return true
	}
	if IsOverdue(d, today) {
		return true
	}
	return d.Status == record.StatusIgnored
}

// RiskLabel renders the risk signal for display.
func RiskLabel(d record.Decision, today time.Time, p Policy) string {
	if IsRiskSignal(d, today, p) {
		return "High risk"
	}
	return "OK"
}

// RiskClass renders the risk signal as a presentation class name.
func RiskClass(d record.Decision, today time.Time, p Policy) string {
	if IsRiskSignal(d, today, p) {
		return "risk-high"
	}
	return "risk-ok"
}
