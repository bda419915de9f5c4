// Package agent routes a question to the mortgage calculator or the property
// search and logs every answered interaction.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vrexx/vrexx/internal/domain/intent"
	"github.com/vrexx/vrexx/internal/domain/interaction"
	"github.com/vrexx/vrexx/internal/domain/mortgage"
	"github.com/vrexx/vrexx/internal/domain/numeric"
	"github.com/vrexx/vrexx/internal/domain/routing"
	"github.com/vrexx/vrexx/internal/logger"
	"github.com/vrexx/vrexx/internal/metrics"
)

// Answer is the user-facing reply plus the decision that produced it.
type Answer struct {
	Text     string
	Decision routing.Decision
}

// Service is the agent entry point.
type Service struct {
	classifier intent.Classifier
	defaults   mortgage.Defaults
	search     Searcher
	log        InteractionLog
	now        func() time.Time
}

// New creates an agent service. log may be nil to disable the interaction log.
func New(
	classifier intent.Classifier, defaults mortgage.Defaults,
	searcher Searcher, log InteractionLog,
) *Service {
	return &Service{
		classifier: classifier,
		defaults:   defaults,
		search:     searcher,
		log:        log,
		now:        time.Now,
	}
}

// Ask answers one question. The finance intent is checked before any number
// is read. Every input is routed, including an empty one. Search failures are
// returned, logging failures are not.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	var ans Answer

	switch s.classifier.Classify(question) {
	case intent.FinancialCalculation:
		terms := mortgage.Resolve(numeric.Extract(question), s.defaults)
		ans = Answer{
			Text:     terms.Describe(),
			Decision: routing.FinanceTool(terms.Principal, terms.Years),
		}
	default:
		res, err := s.search.Search(ctx, question)
		if err != nil {
			return Answer{}, fmt.Errorf("property search: %w", err)
		}
		ans = Answer{Text: res.Text, Decision: res.Decision}
	}

	metrics.AgentDecisionsTotal.WithLabelValues(string(ans.Decision.Route)).Inc()
	s.record(ctx, question, ans)

	return ans, nil
}

func (s *Service) record(ctx context.Context, question string, ans Answer) {
	if s.log == nil {
		return
	}
	rec := interaction.New(question, ans.Decision.LogAnswer(ans.Text), s.now())
	if err := s.log.Append(ctx, rec); err != nil {
		metrics.InteractionLogFailuresTotal.Inc()
		logger.FromContext(ctx).Warn("Failed to log interaction",
			zap.String("route", string(ans.Decision.Route)),
			zap.Error(err),
		)
	}
}
