package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records ingestion and solver activity.
type EngineMetrics struct {
	analyses        *prometheus.CounterVec
	skippedRows     prometheus.Counter
	solveDuration   *prometheus.HistogramVec
	solveIterations prometheus.Histogram
	budgetExhausted prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	analyses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analyses_total",
		Help: "Sales-history analyses by outcome.",
	}, []string{"outcome"})
	skippedRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_skipped_total",
		Help: "CSV rows dropped during ingestion.",
	})
	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Duration of multiplier solves in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	solveIterations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_iterations",
		Help:    "Enforcement iterations consumed per solve.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 35, 50},
	})
	budgetExhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "solver_budget_exhausted_total",
		Help: "Solves that hit the iteration budget before converging.",
	})
	reg.MustRegister(analyses, skippedRows, solveDuration, solveIterations, budgetExhausted)
	return &EngineMetrics{
		analyses:        analyses,
		skippedRows:     skippedRows,
		solveDuration:   solveDuration,
		solveIterations: solveIterations,
		budgetExhausted: budgetExhausted,
	}
}

// IncAnalysis increments the analysis counter for the given outcome.
func (e *EngineMetrics) IncAnalysis(outcome string) {
	if e == nil || e.analyses == nil {
		return
	}
	e.analyses.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddSkippedRows records rows dropped by one ingestion run.
func (e *EngineMetrics) AddSkippedRows(n int) {
	if e == nil || e.skippedRows == nil || n <= 0 {
		return
	}
	e.skippedRows.Add(float64(n))
}

// ObserveSolve records the duration and iteration count of one solve.
func (e *EngineMetrics) ObserveSolve(trigger string, duration time.Duration, iterations int) {
	if e == nil || e.solveDuration == nil {
		return
	}
	e.solveDuration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
	e.solveIterations.Observe(float64(iterations))
}

// IncBudgetExhausted counts a solve that ran out of iterations.
func (e *EngineMetrics) IncBudgetExhausted() {
	if e == nil || e.budgetExhausted == nil {
		return
	}
	e.budgetExhausted.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
