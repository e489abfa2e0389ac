package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"decisiondesk/integration/harness"
)

func extractID(t *testing.T, addOutput string) string {
	t.Helper()
	fields := strings.Fields(addOutput)
	if len(fields) < 2 || fields[0] != "added" {
		t.Fatalf("unexpected add output: %q", addOutput)
	}
	return fields[1]
}

func TestCLISmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{"--help"})
	if code != 0 {
		t.Fatalf("decisiondesk --help exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout+stderr, "single-user decision dashboard") {
		t.Fatalf("expected help header\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"add",
		"--workspace", workspace,
		"--question", "Expand to the EU market?",
		"--domain", "Growth",
		"--impact", "High",
		"--confidence", "85",
		"--guardrails", "cap spend at 50k",
		"--review-date", "2099-06-01",
	})
	if code != 0 {
		t.Fatalf("add exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	id := extractID(t, stdout)

	// empty question must be rejected
	_, stderr, code = harness.Run(t, binPath, runDir, []string{
		"add", "--workspace", workspace, "--question", "  ",
	})
	if code == 0 {
		t.Fatal("add with empty question succeeded")
	}
	if !strings.Contains(stderr, "question") {
		t.Fatalf("expected question validation message, got:\n%s", stderr)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"stats", "--workspace", workspace, "--json",
	})
	if code != 0 {
		t.Fatalf("stats exit code %d\nstderr:\n%s", code, stderr)
	}
	var summary struct {
		Open int
		Risk int
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("parse stats json: %v\n%s", err, stdout)
	}
	if summary.Open != 1 {
		t.Fatalf("Open = %d, want 1\n%s", summary.Open, stdout)
	}
	// high impact counts as a risk signal even with confidence 85
	if summary.Risk != 1 {
		t.Fatalf("Risk = %d, want 1\n%s", summary.Risk, stdout)
	}

	stdout, _, code = harness.Run(t, binPath, runDir, []string{
		"list", "--workspace", workspace, "--risk", "high",
	})
	if code != 0 || !strings.Contains(stdout, "Expand to the EU market?") {
		t.Fatalf("risk filter missed the decision (code %d):\n%s", code, stdout)
	}

	// review without an outcome must fail and change nothing
	_, stderr, code = harness.Run(t, binPath, runDir, []string{
		"review", "--workspace", workspace, "--id", id, "--outcome", "",
	})
	if code == 0 {
		t.Fatal("review with empty outcome succeeded")
	}
	if !strings.Contains(stderr, "outcome") {
		t.Fatalf("expected outcome validation message, got:\n%s", stderr)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"review", "--workspace", workspace,
		"--id", id,
		"--outcome", "entered DE and FR, ahead of plan",
		"--learning", "start local hiring earlier",
	})
	if code != 0 {
		t.Fatalf("review exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "reviewed "+id) {
		t.Fatalf("unexpected review output: %q", stdout)
	}

	stdout, _, code = harness.Run(t, binPath, runDir, []string{
		"stats", "--workspace", workspace, "--json",
	})
	if code != 0 {
		t.Fatalf("stats exit code %d", code)
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("parse stats json: %v", err)
	}
	if summary.Open != 0 {
		t.Fatalf("Open after review = %d, want 0", summary.Open)
	}

	auditPath := filepath.Join(workspace, "audit", "audit.sqlite")
	if _, err := os.Stat(auditPath); err != nil {
		t.Fatalf("audit db not written at %s: %v", auditPath, err)
	}
	requireAuditEvents(t, auditPath, []string{
		"decision_added",
		"decision_reviewed",
	})

	stateDB := filepath.Join(workspace, "state", "decisions.sqlite")
	if _, err := os.Stat(stateDB); err != nil {
		t.Fatalf("state db not written at %s: %v", stateDB, err)
	}
}

func TestCLIExportImport(t *testing.T) {
	binPath := harness.BuildBinary(t)
	src := t.TempDir()
	dst := t.TempDir()
	runDir := t.TempDir()

	for _, q := range []string{"Raise prices?", "Hire a CFO?"} {
		_, stderr, code := harness.Run(t, binPath, runDir, []string{
			"add", "--workspace", src, "--question", q,
		})
		if code != 0 {
			t.Fatalf("add exit code %d\nstderr:\n%s", code, stderr)
		}
	}

	exportPath := filepath.Join(t.TempDir(), "decisions.json")
	_, stderr, code := harness.Run(t, binPath, runDir, []string{
		"export", "--workspace", src, "--out", exportPath,
	})
	if code != 0 {
		t.Fatalf("export exit code %d\nstderr:\n%s", code, stderr)
	}

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{
		"import", "--workspace", dst, "--file", exportPath, "--dry-run",
	})
	if code != 0 {
		t.Fatalf("import --dry-run exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "Raise prices?") {
		t.Fatalf("dry-run diff missing incoming record:\n%s", stdout)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{
		"import", "--workspace", dst, "--file", exportPath,
	})
	if code != 0 {
		t.Fatalf("import exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "2 added") {
		t.Fatalf("unexpected import output: %q", stdout)
	}

	stdout, _, code = harness.Run(t, binPath, runDir, []string{
		"list", "--workspace", dst,
	})
	if code != 0 || !strings.Contains(stdout, "Hire a CFO?") {
		t.Fatalf("imported decisions not listed (code %d):\n%s", code, stdout)
	}
}

func TestCLIClearRequiresForce(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	_, _, code := harness.Run(t, binPath, runDir, []string{
		"add", "--workspace", workspace, "--question", "Keep me",
	})
	if code != 0 {
		t.Fatal("add failed")
	}

	_, stderr, code := harness.Run(t, binPath, runDir, []string{
		"clear", "--workspace", workspace,
	})
	if code == 0 {
		t.Fatal("clear without --force succeeded")
	}
	if !strings.Contains(stderr, "--force") {
		t.Fatalf("expected refusal message, got:\n%s", stderr)
	}

	stdout, _, code := harness.Run(t, binPath, runDir, []string{
		"clear", "--workspace", workspace, "--force",
	})
	if code != 0 || !strings.Contains(stdout, "cleared 1") {
		t.Fatalf("clear --force failed (code %d): %q", code, stdout)
	}
}
