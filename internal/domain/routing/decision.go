// Package routing records which path produced an agent answer.
package routing

import "fmt"

// Route identifies the decision path taken for a query.
type Route string

const (
	// RouteFinanceTool is the mortgage calculator.
	RouteFinanceTool Route = "finance_tool"
	// RouteHybridSearch is a price-filtered nearest-neighbour search.
	RouteHybridSearch Route = "hybrid_search"
	// RouteSemanticSearch is an unfiltered nearest-neighbour search.
	RouteSemanticSearch Route = "semantic_search"
	// RouteFallback means retrieval produced no eligible candidate.
	RouteFallback Route = "fallback"
)

// Decision is the transient routing record of one request.
type Decision struct {
	Route Route

	// Finance tool inputs.
	Principal int64
	Years     int64

	// Search budget; zero when HasBudget is false.
	Budget    int64
	HasBudget bool
}

// FinanceTool builds a decision for the mortgage calculator.
func FinanceTool(principal, years int64) Decision {
	return Decision{Route: RouteFinanceTool, Principal: principal, Years: years}
}

// Search builds a decision for a search with an optional budget.
func Search(budget int64, hasBudget bool) Decision {
	if hasBudget {
		return Decision{Route: RouteHybridSearch, Budget: budget, HasBudget: true}
	}
	return Decision{Route: RouteSemanticSearch}
}

// Fallback turns a search decision into the empty-result outcome, keeping the budget.
func (d Decision) Fallback() Decision {
	d.Route = RouteFallback
	return d
}

// Trace returns the human-readable routing trace.
func (d Decision) Trace() string {
	switch d.Route {
	case RouteFinanceTool:
		return fmt.Sprintf("TOOL: FinanceEngine (Input: %d / %d)", d.Principal, d.Years)
	case RouteHybridSearch:
		return fmt.Sprintf("RAG: Hybrid Search (Max %d€)", d.Budget)
	case RouteSemanticSearch:
		return "RAG: Semantic Search"
	case RouteFallback:
		return "FALLBACK"
	default:
		return "UNKNOWN"
	}
}

// BudgetLabel renders the budget for user-facing text, "N/A" when absent.
func (d Decision) BudgetLabel() string {
	if !d.HasBudget {
		return "N/A"
	}
	return fmt.Sprintf("%d", d.Budget)
}

// LogAnswer prefixes a response with its trace, as stored in the interaction log.
func (d Decision) LogAnswer(response string) string {
	return "[" + d.Trace() + "] " + response
}
