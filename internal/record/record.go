package record

// Status values form a closed lifecycle enumeration, but the field itself
// tolerates free text: older dashboards let users type their own statuses,
// and anything unrecognized classifies as open and non-terminal.
const (
	StatusProposed = "Proposed"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusIgnored  = "Ignored"
)

// Impact levels.
const (
	ImpactLow    = "Low"
	ImpactMedium = "Medium"
	ImpactHigh   = "High"
)

// Decision is the canonical shape of one logged decision and its eventual
// outcome. Optional numerics are pointers so "absent" and "zero" stay
// distinct; timestamps are epoch milliseconds with 0 meaning unset.
type Decision struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`

	Domain string `json:"domain,omitempty"`
	Status string `json:"status"`
	Impact string `json:"impact"`

	Question       string `json:"question"`
	Recommendation string `json:"recommendation,omitempty"`
	Reason         string `json:"reason,omitempty"`

	Confidence *int   `json:"confidence,omitempty"`
	ReviewDate string `json:"reviewDate,omitempty"`

	// Guardrails carries the free-text description and GuardrailsDefined the
	// binary flag. They are independent inputs to the risk rules; neither
	// implies the other.
	Guardrails        string `json:"guardrails,omitempty"`
	GuardrailsDefined bool   `json:"guardrailsDefined,omitempty"`

	Runway *float64 `json:"runway,omitempty"`
	Growth *float64 `json:"growth,omitempty"`
	LTVCAC *float64 `json:"ltvCac,omitempty"`

	Reviewed     bool   `json:"reviewed,omitempty"`
	ReviewedAt   int64  `json:"reviewedAt,omitempty"`
	Outcome      string `json:"outcome,omitempty"`
	OutcomeNotes string `json:"outcomeNotes,omitempty"`
	Learning     string `json:"learning,omitempty"`

	IgnoredAt int64 `json:"ignoredAt,omitempty"`
}

// HasConfidence reports whether a confidence value was recorded.
func (d Decision) HasConfidence() bool {
	return d.Confidence != nil
}

// ConfidenceOrZero returns the recorded confidence, or 0 when absent.
// Sorting by confidence treats missing values as 0.
func (d Decision) ConfidenceOrZero() int {
	if d.Confidence == nil {
		return 0
	}
	return *d.Confidence
}
