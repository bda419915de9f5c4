package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Agent Prometheus metrics.
var (
	AgentDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "agent_decisions_total",
			Help:      "Answered questions by routing decision",
		},
		[]string{"route"}, // finance_tool / hybrid_search / semantic_search / fallback
	)

	InteractionLogFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "interaction_log_failures_total",
			Help:      "Interactions that could not be written to the log",
		},
	)

	PropertiesAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "properties_added_total",
			Help:      "Properties inserted into the index",
		},
	)
)

var agentOnce sync.Once

// RegisterAgentMetrics registers the agent collectors with the default registry.
// Safe to call more than once.
func RegisterAgentMetrics() {
	agentOnce.Do(func() {
		prometheus.MustRegister(
			AgentDecisionsTotal,
			InteractionLogFailuresTotal,
			PropertiesAddedTotal,
		)
	})
}
