package audit

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLogAndListRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit", "events.db")
	logger := NewLogger(dbPath)

	if err := logger.LogEvent("cli", "decision_added", map[string]any{"id": "a", "question": "Expand to EU?"}); err != nil {
		t.Fatal(err)
	}
	if err := logger.LogEvent("cli", "decision_reviewed", map[string]any{"id": "a"}); err != nil {
		t.Fatal(err)
	}

	events, err := logger.ListRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("ListRecent = %d events, want 2", len(events))
	}
	if events[0].Type != "decision_reviewed" {
		t.Fatalf("newest first expected, got %q", events[0].Type)
	}
	if !strings.Contains(events[1].PayloadJSON, "Expand to EU?") {
		t.Fatalf("payload not recorded: %s", events[1].PayloadJSON)
	}
	if events[0].Actor != "cli" {
		t.Fatalf("actor = %q, want cli", events[0].Actor)
	}
}

func TestListRecentOnMissingLog(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "never-written.db"))
	events, err := logger.ListRecent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("missing log returned %d events", len(events))
	}
}

func TestListRecentLimit(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "events.db"))
	for i := 0; i < 5; i++ {
		if err := logger.LogEvent("cli", "decision_added", map[string]int{"n": i}); err != nil {
			t.Fatal(err)
		}
	}
	events, err := logger.ListRecent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("limit not applied: %d events", len(events))
	}
}
