package store

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"decisiondesk/internal/record"
)

// DiffSnapshots renders a unified diff between two collections, both
// pretty-printed in snapshot order. Used for import dry-runs and for the
// audit payload of an applied import. An empty string means no change.
func DiffSnapshots(current, incoming []record.Decision) (string, error) {
	a, err := prettySnapshot(current)
	if err != nil {
		return "", err
	}
	b, err := prettySnapshot(incoming)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "current",
		ToFile:   "incoming",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("render snapshot diff: %w", err)
	}
	return text, nil
}

func prettySnapshot(records []record.Decision) (string, error) {
	if records == nil {
		records = []record.Decision{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data) + "\n", nil
}
