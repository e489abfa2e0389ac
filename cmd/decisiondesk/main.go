package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"decisiondesk/internal/audit"
	"decisiondesk/internal/classify"
	"decisiondesk/internal/config"
	"decisiondesk/internal/dashboard"
	"decisiondesk/internal/dates"
	"decisiondesk/internal/query"
	"decisiondesk/internal/record"
	"decisiondesk/internal/store"
	"decisiondesk/internal/workspace"
)

const appName = "decisiondesk"

func main() {
	flag.String("workspace", "", "Path to workspace root (default: current directory)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: a single-user decision dashboard\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  add         Record a new decision")
		fmt.Fprintln(os.Stderr, "  list        List decisions, with filters")
		fmt.Fprintln(os.Stderr, "  queue       Show open decisions by soonest review date")
		fmt.Fprintln(os.Stderr, "  stats       Show dashboard summary numbers")
		fmt.Fprintln(os.Stderr, "  review      Close the loop on a decision")
		fmt.Fprintln(os.Stderr, "  set-status  Change a decision's status")
		fmt.Fprintln(os.Stderr, "  delete      Remove a decision")
		fmt.Fprintln(os.Stderr, "  clear       Remove every decision")
		fmt.Fprintln(os.Stderr, "  statuses    List status values present in the collection")
		fmt.Fprintln(os.Stderr, "  export      Write the collection as JSON")
		fmt.Fprintln(os.Stderr, "  import      Fold a JSON file into the collection")
		fmt.Fprintln(os.Stderr, "  audit       Show recent mutation events")
		fmt.Fprintln(os.Stderr, "  help        Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var run func([]string, string) error
	switch args[0] {
	case "add":
		run = runAdd
	case "list":
		run = runList
	case "queue":
		run = runQueue
	case "stats":
		run = runStats
	case "review":
		run = runReview
	case "set-status":
		run = runSetStatus
	case "delete":
		run = runDelete
	case "clear":
		run = runClear
	case "statuses":
		run = runStatuses
	case "export":
		run = runExport
	case "import":
		run = runImport
	case "audit":
		run = runAudit
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}

	if err := run(args[1:], workspacePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

// desk bundles everything a command needs: the resolved workspace, the
// effective config, the open dashboard, and the audit logger.
type desk struct {
	Workspace *workspace.Workspace
	Config    config.Config
	Board     *dashboard.Dashboard
	Audit     *audit.Logger

	slot *store.SQLiteSlot
}

func openDesk(workspacePath string) (*desk, error) {
	ws, err := workspace.Resolve(workspacePath)
	if err != nil {
		return nil, err
	}
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(ws.ConfigPath)
	if err != nil {
		return nil, err
	}

	stateDB := ws.StateDBPath
	if cfg.StateDB != "" {
		if stateDB, err = ws.ResolvePath(cfg.StateDB); err != nil {
			return nil, fmt.Errorf("resolve state_db: %w", err)
		}
	}
	auditDB := ws.AuditDBPath
	if cfg.AuditDB != "" {
		if auditDB, err = ws.ResolvePath(cfg.AuditDB); err != nil {
			return nil, fmt.Errorf("resolve audit_db: %w", err)
		}
	}

	slot, err := store.OpenSQLite(stateDB, cfg.Slot)
	if err != nil {
		return nil, err
	}
	board, err := dashboard.Open(slot, cfg.ClassifyPolicy())
	if err != nil {
		slot.Close()
		return nil, err
	}

	return &desk{
		Workspace: ws,
		Config:    cfg,
		Board:     board,
		Audit:     audit.NewLogger(auditDB),
		slot:      slot,
	}, nil
}

func (d *desk) Close() {
	if d.slot != nil {
		_ = d.slot.Close()
	}
}

func (d *desk) logEvent(eventType string, payload any) {
	if err := d.Audit.LogEvent("cli", eventType, payload); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}
}

func runAdd(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	question := fs.String("question", "", "The decision being made (required)")
	recommendation := fs.String("recommendation", "", "Chosen course of action")
	domain := fs.String("domain", "", "Category label, e.g. Hiring or Pricing")
	status := fs.String("status", "", "Initial status (default Proposed)")
	impact := fs.String("impact", "", "Impact: Low, Medium, or High (default Medium)")
	reason := fs.String("reason", "", "Justification")
	guardrails := fs.String("guardrails", "", "Safeguards attached to the decision")
	guardrailsDefined := fs.Bool("guardrails-defined", false, "Mark guardrails as defined without text")
	confidence := fs.String("confidence", "", "Confidence 0-100")
	reviewDate := fs.String("review-date", "", "Review date (YYYY-MM-DD or DD/MM/YYYY)")
	runway := fs.String("runway", "", "Runway in months")
	growth := fs.String("growth", "", "Month-over-month growth percent")
	ltvCac := fs.String("ltv-cac", "", "LTV/CAC ratio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := dashboard.Input{
		Question:          *question,
		Recommendation:    *recommendation,
		Domain:            *domain,
		Status:            *status,
		Impact:            *impact,
		Reason:            *reason,
		Guardrails:        *guardrails,
		GuardrailsDefined: *guardrailsDefined,
		ReviewDate:        *reviewDate,
	}
	var err error
	if in.Confidence, err = parseIntFlag("confidence", *confidence); err != nil {
		return err
	}
	if in.Runway, err = parseFloatFlag("runway", *runway); err != nil {
		return err
	}
	if in.Growth, err = parseFloatFlag("growth", *growth); err != nil {
		return err
	}
	if in.LTVCAC, err = parseFloatFlag("ltv-cac", *ltvCac); err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	added, err := d.Board.AddDecision(in)
	if err != nil {
		return err
	}
	d.logEvent("decision_added", map[string]any{
		"id":       added.ID,
		"question": added.Question,
		"status":   added.Status,
		"impact":   added.Impact,
	})
	fmt.Printf("added %s  %s\n", added.ID, added.Question)
	return nil
}

func runList(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	status := fs.String("status", "all", "Filter by status, or \"all\"")
	risk := fs.String("risk", "all", "Filter by risk: high, ok, or all")
	search := fs.String("search", "", "Case-insensitive text search")
	sortMode := fs.String("sort", string(query.SortNewest), "Sort: newest, oldest, confidence-asc, confidence-desc, review-date")
	asOf := fs.String("as-of", "", "Classify as of this date instead of today")
	asJSON := fs.Bool("json", false, "Emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	today, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	matched := d.Board.Filtered(query.Criteria{Status: *status, Risk: *risk, Text: *search}, today)
	matched = query.Sort(matched, query.SortMode(*sortMode))

	if *asJSON {
		return printJSON(matched)
	}
	if len(matched) == 0 {
		fmt.Println("no decisions match")
		return nil
	}
	p := d.Board.Policy()
	for _, rec := range matched {
		printDecision(rec, today, p)
	}
	return nil
}

func runQueue(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asOf := fs.String("as-of", "", "Classify as of this date instead of today")
	asJSON := fs.Bool("json", false, "Emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	today, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	queue := d.Board.Queue()
	if *asJSON {
		return printJSON(queue)
	}
	if len(queue) == 0 {
		fmt.Println("review queue is empty")
		return nil
	}
	p := d.Board.Policy()
	for _, rec := range queue {
		printDecision(rec, today, p)
	}
	return nil
}

func runStats(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asOf := fs.String("as-of", "", "Compute as of this date instead of today")
	asJSON := fs.Bool("json", false, "Emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	today, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	s := d.Board.Stats(today)
	if *asJSON {
		return printJSON(s)
	}
	avg := "—"
	if s.AvgConfidence != nil {
		avg = fmt.Sprintf("%d%%", *s.AvgConfidence)
	}
	fmt.Printf("open      %d\n", s.Open)
	fmt.Printf("upcoming  %d\n", s.Upcoming)
	fmt.Printf("risk      %d\n", s.Risk)
	fmt.Printf("avg conf  %s\n", avg)
	fmt.Printf("ignored   %d\n", s.Ignored)
	fmt.Printf("reviewed  %d\n", s.Reviewed)
	fmt.Printf("total     %d\n", s.Total)
	return nil
}

func runReview(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Decision id (required)")
	outcome := fs.String("outcome", "", "What actually happened (required)")
	notes := fs.String("notes", "", "Outcome notes")
	learning := fs.String("learning", "", "What to do differently next time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	reviewed, err := d.Board.MarkReviewed(*id, *outcome, *notes, *learning)
	if err != nil {
		return err
	}
	d.logEvent("decision_reviewed", map[string]any{
		"id":      reviewed.ID,
		"outcome": reviewed.Outcome,
	})
	fmt.Printf("reviewed %s  %s\n", reviewed.ID, reviewed.Question)
	return nil
}

func runSetStatus(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("set-status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Decision id (required)")
	status := fs.String("status", "", "New status (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if strings.TrimSpace(*status) == "" {
		return fmt.Errorf("--status is required")
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	updated, err := d.Board.UpdateStatus(*id, *status)
	if err != nil {
		return err
	}
	d.logEvent("status_updated", map[string]any{
		"id":     updated.ID,
		"status": updated.Status,
	})
	fmt.Printf("status of %s is now %s\n", updated.ID, updated.Status)
	return nil
}

func runDelete(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	id := fs.String("id", "", "Decision id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Board.DeleteDecision(*id); err != nil {
		return err
	}
	d.logEvent("decision_deleted", map[string]any{"id": *id})
	fmt.Printf("deleted %s\n", *id)
	return nil
}

func runClear(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	force := fs.Bool("force", false, "Actually clear the collection")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*force {
		return fmt.Errorf("refusing to clear all decisions without --force")
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	removed := d.Board.Len()
	if err := d.Board.ClearAll(); err != nil {
		return err
	}
	d.logEvent("decisions_cleared", map[string]any{"removed": removed})
	fmt.Printf("cleared %d decisions\n", removed)
	return nil
}

func runStatuses(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("statuses", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	for _, s := range d.Board.Statuses() {
		fmt.Println(s)
	}
	return nil
}

func runExport(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("out", "", "Output path, or - for stdout (default exports/decisions-<date>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	if *out == "-" {
		return d.Board.ExportJSON(os.Stdout)
	}

	path := *out
	if path == "" {
		path = filepath.Join(d.Workspace.ExportsDir, fmt.Sprintf("decisions-%s.json", dates.Format(dates.Today())))
	} else if path, err = d.Workspace.ResolvePath(path); err != nil {
		return fmt.Errorf("resolve --out: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	if err := d.Board.ExportJSON(f); err != nil {
		return err
	}
	fmt.Printf("exported %d decisions to %s\n", d.Board.Len(), path)
	return nil
}

func runImport(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "JSON file to import (required)")
	replace := fs.Bool("replace", false, "Replace the collection instead of merging by id")
	dryRun := fs.Bool("dry-run", false, "Show the diff without applying")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	path, err := d.Workspace.ResolvePath(*file)
	if err != nil {
		return fmt.Errorf("resolve --file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	res, err := d.Board.ImportJSON(f, *replace, *dryRun)
	if err != nil {
		return err
	}
	if *dryRun {
		if res.Diff == "" {
			fmt.Println("import would change nothing")
			return nil
		}
		fmt.Print(res.Diff)
		return nil
	}

	d.logEvent("decisions_imported", map[string]any{
		"file":    path,
		"added":   res.Added,
		"updated": res.Updated,
		"removed": res.Removed,
		"replace": *replace,
		"diff":    res.Diff,
	})
	fmt.Printf("imported: %d added, %d updated, %d removed\n", res.Added, res.Updated, res.Removed)
	return nil
}

func runAudit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Number of events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d, err := openDesk(workspacePath)
	if err != nil {
		return err
	}
	defer d.Close()

	events, err := d.Audit.ListRecent(*limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no audit events")
		return nil
	}
	for _, e := range events {
		fmt.Printf("%s  %-20s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.PayloadJSON)
	}
	return nil
}

func printDecision(rec record.Decision, today time.Time, p classify.Policy) {
	conf := "—"
	if rec.HasConfidence() {
		conf = fmt.Sprintf("%d%%", *rec.Confidence)
	}
	review := rec.ReviewDate
	if review == "" {
		review = "—"
	}
	flags := []string{classify.RiskLabel(rec, today, p)}
	if classify.IsOverdue(rec, today) {
		flags = append(flags, "overdue")
	} else if classify.IsUpcoming(rec, today, p) {
		flags = append(flags, "upcoming")
	}
	fmt.Printf("%s  [%s/%s]  conf %s  review %s  (%s)\n  %s\n",
		rec.ID, rec.Status, rec.Impact, conf, review, strings.Join(flags, ", "), rec.Question)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func parseAsOf(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return dates.Today(), nil
	}
	t, ok := dates.Parse(value)
	if !ok {
		return time.Time{}, fmt.Errorf("unparseable --as-of date: %s", value)
	}
	return t, nil
}

func parseIntFlag(name, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("--%s must be an integer: %q", name, value)
	}
	return &n, nil
}

func parseFloatFlag(name, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("--%s must be a number: %q", name, value)
	}
	return &f, nil
}
