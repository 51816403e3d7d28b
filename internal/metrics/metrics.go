// Package metrics holds the process-wide Prometheus collectors and the
// /metrics handler served by `cbthelper serve --metrics-addr`.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Operations counts engine operations by name and result (ok, error).
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbthelper_operations_total",
		Help: "Engine operations by name and result",
	}, []string{"operation", "result"})

	// Interventions counts selected strategies by strategy and reason.
	Interventions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbthelper_interventions_total",
		Help: "Strategies selected by strategy and selection reason",
	}, []string{"strategy", "reason"})

	// Outcomes counts frustration regulation outcomes.
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbthelper_regulation_outcomes_total",
		Help: "Frustration regulation outcomes",
	}, []string{"outcome"})

	// ThinkingPhases counts protocol phases produced by protocol kind.
	ThinkingPhases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbthelper_thinking_phases_total",
		Help: "Thinking protocol phases produced by kind",
	}, []string{"kind"})

	// ActiveSessions is the number of sessions held in memory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cbthelper_active_sessions",
		Help: "Sessions currently held in memory",
	})

	// ExpiredSessions counts sessions removed by the idle TTL.
	ExpiredSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cbthelper_expired_sessions_total",
		Help: "Sessions removed after exceeding the idle TTL",
	})
)

// Result labels for Operations.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
