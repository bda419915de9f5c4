package agent

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vrexx/vrexx/internal/domain"
	"github.com/vrexx/vrexx/internal/domain/intent"
	"github.com/vrexx/vrexx/internal/domain/interaction"
	"github.com/vrexx/vrexx/internal/domain/mortgage"
	"github.com/vrexx/vrexx/internal/domain/routing"
	"github.com/vrexx/vrexx/internal/metrics"
	"github.com/vrexx/vrexx/internal/usecase/search"
)

func TestMain(m *testing.M) {
	metrics.RegisterAgentMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockSearcher struct {
	result  search.Result
	err     error
	queries []string
}

func (m *mockSearcher) Search(_ context.Context, query string) (search.Result, error) {
	m.queries = append(m.queries, query)
	return m.result, m.err
}

type mockLog struct {
	records []interaction.Record
	err     error
}

func (m *mockLog) Append(_ context.Context, rec interaction.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func newTestService(s *mockSearcher, l InteractionLog) *Service {
	svc := New(intent.NewClassifier(intent.DefaultFinanceKeywords), mortgage.StandardDefaults(), s, l)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

// --- Tests ---

func TestAsk_FinanceDefaults(t *testing.T) {
	s := &mockSearcher{}
	l := &mockLog{}
	svc := newTestService(s, l)

	ans, err := svc.Ask(context.Background(), "Calcola la rata del mutuo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Trace() != "TOOL: FinanceEngine (Input: 200000 / 20)" {
		t.Errorf("unexpected trace %q", ans.Decision.Trace())
	}
	if !strings.Contains(ans.Text, "1159.92") {
		t.Errorf("expected default payment in %q", ans.Text)
	}
	if len(s.queries) != 0 {
		t.Error("finance questions must not reach the search")
	}
	if len(l.records) != 1 || !strings.HasPrefix(l.records[0].Answer, "[TOOL: FinanceEngine") {
		t.Errorf("unexpected log %+v", l.records)
	}
}

func TestAsk_FinanceLastLargeNumberWins(t *testing.T) {
	svc := newTestService(&mockSearcher{}, nil)

	ans, err := svc.Ask(context.Background(), "mortgage 150000 or maybe 300000 over 25 years")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Principal != 300000 || ans.Decision.Years != 25 {
		t.Errorf("expected 300000/25, got %d/%d", ans.Decision.Principal, ans.Decision.Years)
	}
}

func TestAsk_FinanceBeatsBudget(t *testing.T) {
	s := &mockSearcher{}
	svc := newTestService(s, nil)

	ans, err := svc.Ask(context.Background(), "House at 250000, what is the monthly payment?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Route != routing.RouteFinanceTool {
		t.Errorf("expected finance route, got %s", ans.Decision.Route)
	}
	if len(s.queries) != 0 {
		t.Error("search must not run")
	}
}

func TestAsk_SearchPath(t *testing.T) {
	s := &mockSearcher{result: search.Result{
		Text:     "Found: Via Po 2 at 240000€. Flat",
		Decision: routing.Search(250000, true),
	}}
	l := &mockLog{}
	svc := newTestService(s, l)

	ans, err := svc.Ask(context.Background(), "Flat in Torino under 250000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != "Found: Via Po 2 at 240000€. Flat" {
		t.Errorf("unexpected text %q", ans.Text)
	}
	want := "[RAG: Hybrid Search (Max 250000€)] Found: Via Po 2 at 240000€. Flat"
	if len(l.records) != 1 || l.records[0].Answer != want {
		t.Fatalf("expected log answer %q, got %+v", want, l.records)
	}
	if l.records[0].Question != "Flat in Torino under 250000" {
		t.Errorf("unexpected logged question %q", l.records[0].Question)
	}
}

func TestAsk_SearchErrorNotLogged(t *testing.T) {
	l := &mockLog{}
	svc := newTestService(&mockSearcher{err: domain.ErrEmbeddingProviderError}, l)

	_, err := svc.Ask(context.Background(), "villa")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(l.records) != 0 {
		t.Error("failed requests must not be logged")
	}
}

func TestAsk_LogFailureAbsorbed(t *testing.T) {
	svc := newTestService(&mockSearcher{}, &mockLog{err: errors.New("log store down")})
	before := testutil.ToFloat64(metrics.InteractionLogFailuresTotal)

	ans, err := svc.Ask(context.Background(), "calcola mutuo 100000 10")
	if err != nil {
		t.Fatalf("log failure must not fail the request: %v", err)
	}
	if ans.Decision.Principal != 100000 || ans.Decision.Years != 10 {
		t.Errorf("unexpected decision %+v", ans.Decision)
	}
	if got := testutil.ToFloat64(metrics.InteractionLogFailuresTotal); got != before+1 {
		t.Errorf("expected failure counter +1, got %f -> %f", before, got)
	}
}

func TestAsk_EmptyQuestionRoutesToSearch(t *testing.T) {
	s := &mockSearcher{result: search.Result{Text: "none", Decision: routing.Search(0, false).Fallback()}}
	l := &mockLog{}
	svc := newTestService(s, l)

	ans, err := svc.Ask(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.queries) != 1 || s.queries[0] != "" {
		t.Errorf("expected one empty search query, got %q", s.queries)
	}
	if ans.Decision.Route != routing.RouteFallback {
		t.Errorf("expected fallback route, got %s", ans.Decision.Route)
	}
	if len(l.records) != 1 {
		t.Errorf("expected the interaction to be logged, got %d records", len(l.records))
	}
}

func TestAsk_LongQuestionStillRouted(t *testing.T) {
	s := &mockSearcher{}
	svc := newTestService(s, nil)
	question := strings.Repeat("a ", 2100) + "mutuo 300000"

	ans, err := svc.Ask(context.Background(), question)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Decision.Trace() != "TOOL: FinanceEngine (Input: 300000 / 20)" {
		t.Errorf("unexpected trace %q", ans.Decision.Trace())
	}
	if len(s.queries) != 0 {
		t.Error("search must not run")
	}
}

func TestAsk_CountsDecisions(t *testing.T) {
	s := &mockSearcher{result: search.Result{Text: "none", Decision: routing.Search(0, false).Fallback()}}
	svc := newTestService(s, nil)
	before := testutil.ToFloat64(metrics.AgentDecisionsTotal.WithLabelValues("fallback"))

	if _, err := svc.Ask(context.Background(), "castle"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(metrics.AgentDecisionsTotal.WithLabelValues("fallback")); got != before+1 {
		t.Errorf("expected fallback counter +1, got %f -> %f", before, got)
	}
}
