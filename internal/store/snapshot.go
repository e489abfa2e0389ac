package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"decisiondesk/internal/record"
)

// Load reads the collection from the slot. A missing slot, malformed JSON,
// or non-array content all yield an empty collection without error; the
// stored data is client-local state and availability wins over surfacing
// corruption. Only slot I/O failures propagate.
func Load(slot Slot) ([]record.Decision, error) {
	raw, ok, err := slot.Read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return []record.Decision{}, nil
	}
	records, err := ParseSnapshot([]byte(raw))
	if err != nil {
		return []record.Decision{}, nil
	}
	return records, nil
}

// Save serializes the collection and writes it as a full snapshot.
func Save(slot Slot, records []record.Decision) error {
	if records == nil {
		records = []record.Decision{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return slot.Write(string(data))
}

// ParseSnapshot decodes a stored JSON array into normalized decisions.
// Elements that are not JSON objects are dropped; legacy field aliases and
// loose numeric encodings are resolved here, once, so nothing downstream
// sees a duck-typed record.
func ParseSnapshot(data []byte) ([]record.Decision, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	out := make([]record.Decision, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var rr rawRecord
		if err := json.Unmarshal(item, &rr); err != nil {
			continue
		}
		out = append(out, record.Normalize(rr.decision()))
	}
	return out, nil
}

// rawRecord tolerates the shapes older dashboard variants persisted:
// numerics stored as strings, booleans stored as 0/1, and renamed fields
// (`type` for domain, `ltv` for ltvCac, `notes` for outcomeNotes).
type rawRecord struct {
	ID        any    `json:"id"`
	CreatedAt any    `json:"createdAt"`
	Domain    string `json:"domain"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Impact    string `json:"impact"`

	Question       string `json:"question"`
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`

	Confidence any    `json:"confidence"`
	ReviewDate string `json:"reviewDate"`

	Guardrails        string `json:"guardrails"`
	GuardrailsDefined any    `json:"guardrailsDefined"`

	Runway any `json:"runway"`
	Growth any `json:"growth"`
	LTVCAC any `json:"ltvCac"`
	LTV    any `json:"ltv"`

	Reviewed     any    `json:"reviewed"`
	ReviewedAt   any    `json:"reviewedAt"`
	Outcome      string `json:"outcome"`
	OutcomeNotes string `json:"outcomeNotes"`
	Notes        string `json:"notes"`
	Learning     string `json:"learning"`

	IgnoredAt any `json:"ignoredAt"`
}

func (r rawRecord) decision() record.Decision {
	d := record.Decision{
		ID:             asString(r.ID),
		CreatedAt:      asInt64(r.CreatedAt),
		Domain:         r.Domain,
		Status:         r.Status,
		Impact:         r.Impact,
		Question:       r.Question,
		Recommendation: r.Recommendation,
		Reason:         r.Reason,
		Confidence:     asIntPtr(r.Confidence),
		ReviewDate:     r.ReviewDate,
		Guardrails:     r.Guardrails,
		Runway:         asFloatPtr(r.Runway),
		Growth:         asFloatPtr(r.Growth),
		LTVCAC:         asFloatPtr(r.LTVCAC),
		Reviewed:       asBool(r.Reviewed),
		ReviewedAt:     asInt64(r.ReviewedAt),
		Outcome:        r.Outcome,
		OutcomeNotes:   r.OutcomeNotes,
		Learning:       r.Learning,
		IgnoredAt:      asInt64(r.IgnoredAt),
	}
	d.GuardrailsDefined = asBool(r.GuardrailsDefined)
	if d.Domain == "" {
		d.Domain = r.Type
	}
	if d.LTVCAC == nil {
		d.LTVCAC = asFloatPtr(r.LTV)
	}
	if d.OutcomeNotes == "" {
		d.OutcomeNotes = r.Notes
	}
	return d
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func asIntPtr(v any) *int {
	f := asFloatPtr(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func asFloatPtr(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}
