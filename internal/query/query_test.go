package query

import (
	"reflect"
	"testing"
	"time"

	"decisiondesk/internal/classify"
	"decisiondesk/internal/dates"
	"decisiondesk/internal/record"
)

var today = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.Local)

func intPtr(n int) *int { return &n }

func fixture() []record.Decision {
	return []record.Decision{
		{ID: "a", CreatedAt: 400, Status: record.StatusProposed, Impact: record.ImpactLow, Domain: "Hiring",
			Question: "Hire a staff engineer?", Confidence: intPtr(80), Guardrails: "90-day plan", ReviewDate: "2026-03-20"},
		{ID: "b", CreatedAt: 300, Status: record.StatusApproved, Impact: record.ImpactHigh, Domain: "Pricing",
			Question: "Raise prices 20%?", Confidence: intPtr(85), Guardrails: "rollback if churn spikes"},
		{ID: "c", CreatedAt: 200, Status: record.StatusProposed, Impact: record.ImpactLow, Domain: "Marketing",
			Question: "Sponsor the conference?", Confidence: intPtr(40)},
		{ID: "d", CreatedAt: 100, Status: record.StatusRejected, Impact: record.ImpactMedium, Domain: "Pricing",
			Question: "Introduce a free tier?", Reviewed: true, ReviewedAt: 100, Outcome: "dropped"},
	}
}

func ids(records []record.Decision) []string {
	out := make([]string, 0, len(records))
	for _, d := range records {
		out = append(out, d.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	p := classify.DefaultPolicy()
	got := Filter(fixture(), Criteria{Status: record.StatusProposed}, today, p)
	if want := []string{"a", "c"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("status filter = %v, want %v", ids(got), want)
	}

	if got := Filter(fixture(), Criteria{Status: "all"}, today, p); len(got) != 4 {
		t.Fatalf("status=all kept %d records, want 4", len(got))
	}
	if got := Filter(fixture(), Criteria{}, today, p); len(got) != 4 {
		t.Fatalf("empty criteria kept %d records, want 4", len(got))
	}
}

func TestFilterByRisk(t *testing.T) {
	p := classify.DefaultPolicy()
	// b is high impact, c is low confidence
	high := Filter(fixture(), Criteria{Risk: "high"}, today, p)
	if want := []string{"b", "c"}; !reflect.DeepEqual(ids(high), want) {
		t.Fatalf("risk=high = %v, want %v", ids(high), want)
	}
	ok := Filter(fixture(), Criteria{Risk: "ok"}, today, p)
	if want := []string{"a", "d"}; !reflect.DeepEqual(ids(ok), want) {
		t.Fatalf("risk=ok = %v, want %v", ids(ok), want)
	}
}

func TestFilterByText(t *testing.T) {
	p := classify.DefaultPolicy()
	cases := []struct {
		text string
		want []string
	}{
		{"pricing", []string{"b", "d"}},
		{"PRICES", []string{"b"}},
		{"churn", []string{"b"}},
		{"dropped", []string{"d"}}, // outcome text is searchable
		{"", []string{"a", "b", "c", "d"}},
		{"zeppelin", []string{}},
	}
	for _, tc := range cases {
		got := ids(Filter(fixture(), Criteria{Text: tc.text}, today, p))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("text=%q = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestFilterCombined(t *testing.T) {
	p := classify.DefaultPolicy()
	got := Filter(fixture(), Criteria{Status: record.StatusProposed, Risk: "high"}, today, p)
	if want := []string{"c"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("combined filter = %v, want %v", ids(got), want)
	}
}

func TestSortModes(t *testing.T) {
	records := fixture()

	cases := []struct {
		mode SortMode
		want []string
	}{
		{SortNewest, []string{"a", "b", "c", "d"}},
		{SortOldest, []string{"d", "c", "b", "a"}},
		{SortConfidenceDesc, []string{"b", "a", "c", "d"}},
		{SortConfidenceAsc, []string{"d", "c", "a", "b"}},
		// a has the only review date; the rest order newest-first behind it
		{SortReviewDateAsc, []string{"a", "b", "c", "d"}},
		{SortMode("bogus"), []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		got := ids(Sort(records, tc.mode))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Sort(%s) = %v, want %v", tc.mode, got, tc.want)
		}
	}

	// input order must survive sorting
	if got := ids(records); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("Sort mutated its input: %v", got)
	}
}

func TestSortReviewDateOrdersDates(t *testing.T) {
	records := []record.Decision{
		{ID: "late", CreatedAt: 3, ReviewDate: dates.Format(today.AddDate(0, 0, 20))},
		{ID: "none", CreatedAt: 2},
		{ID: "soon", CreatedAt: 1, ReviewDate: dates.Format(today.AddDate(0, 0, 2))},
		{ID: "junk", CreatedAt: 4, ReviewDate: "whenever"},
	}
	got := ids(Sort(records, SortReviewDateAsc))
	want := []string{"soon", "late", "junk", "none"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("review-date sort = %v, want %v", got, want)
	}
}

func TestStatusValues(t *testing.T) {
	got := StatusValues(fixture())
	want := []string{record.StatusApproved, record.StatusProposed, record.StatusRejected}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StatusValues = %v, want %v", got, want)
	}
	if got := StatusValues(nil); len(got) != 0 {
		t.Fatalf("StatusValues(nil) = %v, want empty", got)
	}
}
