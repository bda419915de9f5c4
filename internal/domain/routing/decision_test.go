package routing

import "testing"

func TestTrace(t *testing.T) {
	tests := []struct {
		name string
		d    Decision
		want string
	}{
		{"finance", FinanceTool(300000, 25), "TOOL: FinanceEngine (Input: 300000 / 25)"},
		{"hybrid", Search(250000, true), "RAG: Hybrid Search (Max 250000€)"},
		{"semantic", Search(0, false), "RAG: Semantic Search"},
		{"fallback", Search(250000, true).Fallback(), "FALLBACK"},
		{"unknown", Decision{}, "UNKNOWN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.d.Trace(); got != tc.want {
				t.Errorf("Trace() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSearch_IgnoresBudgetWhenAbsent(t *testing.T) {
	d := Search(999, false)
	if d.HasBudget || d.Budget != 0 {
		t.Errorf("unexpected budget on semantic decision: %+v", d)
	}
}

func TestFallback_KeepsBudget(t *testing.T) {
	d := Search(180000, true).Fallback()
	if d.BudgetLabel() != "180000" {
		t.Errorf("got %q", d.BudgetLabel())
	}
	if Search(0, false).Fallback().BudgetLabel() != "N/A" {
		t.Error("expected N/A for missing budget")
	}
}

func TestLogAnswer(t *testing.T) {
	got := Search(0, false).LogAnswer("Found: Via Roma 1 at 100000€. Bilocale")
	want := "[RAG: Semantic Search] Found: Via Roma 1 at 100000€. Bilocale"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
