// Package search answers property questions with a price-filtered nearest-neighbour lookup.
package search

import (
	"context"
	"fmt"

	"github.com/vrexx/vrexx/internal/domain/numeric"
	"github.com/vrexx/vrexx/internal/domain/property"
	"github.com/vrexx/vrexx/internal/domain/routing"
)

// DefaultBudgetThreshold is the smallest number (exclusive) treated as a price budget.
// Smaller numbers are room counts, floors, years and the like.
const DefaultBudgetThreshold int64 = 10000

// Result is one search outcome. Property is nil on fallback.
type Result struct {
	Text     string
	Decision routing.Decision
	Property *property.Property
}

// Service runs hybrid (budget-filtered) or purely semantic retrieval.
type Service struct {
	index     Index
	embed     Embedder
	threshold int64
}

// New creates a search service. A non-positive threshold selects DefaultBudgetThreshold.
func New(index Index, embed Embedder, threshold int64) *Service {
	if threshold <= 0 {
		threshold = DefaultBudgetThreshold
	}
	return &Service{index: index, embed: embed, threshold: threshold}
}

// Threshold returns the budget threshold in effect.
func (s *Service) Threshold() int64 { return s.threshold }

// Search embeds the query once and returns the closest property, restricted to
// the budget when the query mentions one. No match is a fallback, not an error.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	budget, hasBudget := ExtractBudget(numeric.Extract(query), s.threshold)
	decision := routing.Search(budget, hasBudget)

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	var ceiling *float64
	if hasBudget {
		c := float64(budget)
		ceiling = &c
	}

	p, err := s.index.Nearest(ctx, emb.Embedding, ceiling)
	if err != nil {
		return Result{}, fmt.Errorf("nearest property: %w", err)
	}

	if p == nil {
		decision = decision.Fallback()
		return Result{
			Text:     fmt.Sprintf("No matching property found (Budget: %s).", decision.BudgetLabel()),
			Decision: decision,
		}, nil
	}

	return Result{Text: p.Summary(), Decision: decision, Property: p}, nil
}

// ExtractBudget returns the first number strictly greater than threshold.
// Later numbers are ignored even if larger.
func ExtractBudget(numbers []int64, threshold int64) (int64, bool) {
	for _, n := range numbers {
		if n > threshold {
			return n, true
		}
	}
	return 0, false
}
