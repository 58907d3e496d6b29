package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verdict module. A nil *Metrics is
// valid and records nothing, so tests can pass nil without registering
// collectors.
type Metrics struct {
	// Pipeline stage latencies by stage name
	StageLatency *prometheus.HistogramVec

	// Final decisions by verdict and risk level
	DecisionOutcome *prometheus.CounterVec

	// Failed rules by rule ID
	RuleFailures *prometheus.CounterVec

	// Overall analysis latency
	AnalyzeLatency prometheus.Histogram
}

// New creates a Metrics instance with all verdict module metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_analysis_stage_duration_seconds",
			Help:    "Duration of analysis pipeline stages by stage",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"stage"}), // stage: "rules", "aggregate"

		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_decisions_total",
			Help: "Total final decisions by verdict and risk level",
		}, []string{"decision", "risk_level"}),

		RuleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_rule_failures_total",
			Help: "Total rule violations by rule ID",
		}, []string{"rule_id"}),

		AnalyzeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_analyze_duration_seconds",
			Help:    "Duration of full document analysis",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// ObserveStageLatency records the duration of one pipeline stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementDecision records a final decision.
func (m *Metrics) IncrementDecision(decision, riskLevel string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(decision, riskLevel).Inc()
	}
}

// IncrementRuleFailure records one rule violation.
func (m *Metrics) IncrementRuleFailure(ruleID string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(ruleID).Inc()
	}
}

// ObserveAnalyzeLatency records the total analysis duration.
func (m *Metrics) ObserveAnalyzeLatency(d time.Duration) {
	if m != nil {
		m.AnalyzeLatency.Observe(d.Seconds())
	}
}
