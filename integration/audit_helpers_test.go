package integration_test

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func countAuditEvents(t *testing.T, dbPath string) map[string]int {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open audit db: %v", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT type, COUNT(*) FROM events GROUP BY type")
	if err != nil {
		t.Fatalf("query audit events: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			t.Fatalf("scan audit events: %v", err)
		}
		counts[eventType] = count
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate audit events: %v", err)
	}
	return counts
}

func requireAuditEvents(t *testing.T, dbPath string, want []string) {
	t.Helper()
	counts := countAuditEvents(t, dbPath)
	for _, eventType := range want {
		if counts[eventType] == 0 {
			t.Fatalf("expected at least one %q audit event, have %v", eventType, counts)
		}
	}
}
