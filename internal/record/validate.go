package record

import (
	"fmt"
	"strings"
)

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// ValidateNew checks the fields a decision must carry before it may enter
// the collection. Range problems on optional numerics are handled by
// clamping at input time, so only hard requirements are rejected here.
func ValidateNew(d Decision) error {
	var errs ValidationErrors
	if strings.TrimSpace(d.Question) == "" {
		errs = append(errs, ValidationError{Field: "question", Message: "decision question is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ClampConfidence bounds a confidence value to [0,100]. Nil passes through.
func ClampConfidence(n *int) *int {
	if n == nil {
		return nil
	}
	v := clampInt(*n, 0, 100)
	return &v
}

// ClampRunway bounds runway months to [0,120]. Nil passes through.
func ClampRunway(n *float64) *float64 {
	return clampFloat(n, 0, 120)
}

// ClampGrowth bounds growth percent to [-100,1000]. Nil passes through.
func ClampGrowth(n *float64) *float64 {
	return clampFloat(n, -100, 1000)
}

// ClampRatio bounds a ratio such as LTV/CAC to be non-negative.
func ClampRatio(n *float64) *float64 {
	if n == nil {
		return nil
	}
	v := *n
	if v < 0 {
		v = 0
	}
	return &v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(n *float64, lo, hi float64) *float64 {
	if n == nil {
		return nil
	}
	v := *n
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return &v
}
