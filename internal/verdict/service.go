package verdict

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/audit"
	"veridoc/internal/cases"
	"veridoc/internal/rules"
	"veridoc/internal/verdict/metrics"
	"veridoc/pkg/requestcontext"
)

// PipelineVersion tags every analysis artifact so stored cases remain
// interpretable after the pipeline evolves.
const PipelineVersion = "1.0.0"

// Service runs the analysis pipeline for one document: rules engine, then
// aggregation, then the side concerns (metrics, audit trail, case record).
// The verdict itself never depends on persistence succeeding.
type Service struct {
	engine     *rules.Engine
	aggregator *Aggregator
	store      cases.Store
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService constructs the analysis service. Store and auditor may be nil;
// analyses then run without persistence or an audit trail.
func NewService(cfg Config, store cases.Store, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		engine: rules.NewEngine(rules.DateWindow{
			MaxExpiryYears: cfg.ExpiryWindowYears,
			MaxAgeYears:    cfg.MaxAgeYears,
		}),
		aggregator: NewAggregator(cfg),
		store:      store,
		auditor:    auditor,
		metrics:    m,
		logger:     logger,
	}
}

// Analyze produces the verdict for one document.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	start := time.Now()
	caseID := uuid.NewString()

	rulesStart := time.Now()
	report := s.engine.Apply(ctx, req.Extraction.Fields)
	rulesElapsed := time.Since(rulesStart)

	aggStart := time.Now()
	decision := s.aggregator.Aggregate(Signals{
		Report:     report,
		Quality:    req.Quality,
		Extraction: req.Extraction,
		Advisory:   req.Advisory,
	})
	aggElapsed := time.Since(aggStart)

	result := &AnalysisResult{
		CaseID:     caseID,
		AnalyzedAt: requestcontext.Now(ctx),
		Decision:   decision,
		Report:     report,
		StageLatencies: map[string]float64{
			"rules_ms":     millis(rulesElapsed),
			"aggregate_ms": millis(aggElapsed),
		},
		PipelineVersion: PipelineVersion,
	}

	s.observe(report, decision, rulesElapsed, aggElapsed, time.Since(start))
	s.record(ctx, result)

	s.logger.InfoContext(ctx, "document analyzed",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
		"decision", decision.Final,
		"score", decision.Score,
		"risk_level", report.RiskLevel,
		"rules_passed", report.RulesPassed,
		"rules_total", report.RulesTotal,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (s *Service) observe(report *rules.Report, decision Decision, rulesElapsed, aggElapsed, total time.Duration) {
	s.metrics.ObserveStageLatency("rules", rulesElapsed)
	s.metrics.ObserveStageLatency("aggregate", aggElapsed)
	s.metrics.ObserveAnalyzeLatency(total)
	s.metrics.IncrementDecision(string(decision.Final), string(report.RiskLevel))
	for _, v := range report.Violations {
		s.metrics.IncrementRuleFailure(v.RuleID)
	}
}

// record persists the case and emits the audit event. Failures here are
// logged, never surfaced: the verdict already exists and belongs to the
// caller regardless of what the storage layer thinks.
func (s *Service) record(ctx context.Context, result *AnalysisResult) {
	requestID := requestcontext.RequestID(ctx)

	if s.auditor != nil {
		err := s.auditor.Emit(ctx, audit.Event{
			Timestamp:   result.AnalyzedAt,
			CaseID:      result.CaseID,
			RequestID:   requestID,
			Decision:    string(result.Decision.Final),
			RiskLevel:   string(result.Report.RiskLevel),
			Score:       result.Decision.Score,
			RulesPassed: result.Report.RulesPassed,
			RulesTotal:  result.Report.RulesTotal,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "audit emit failed", "case_id", result.CaseID, "error", err)
		}
	}

	if s.store != nil {
		err := s.store.Save(ctx, cases.Record{
			ID:              result.CaseID,
			CreatedAt:       result.AnalyzedAt,
			Decision:        result.Decision.Final,
			Score:           result.Decision.Score,
			RiskLevel:       result.Report.RiskLevel,
			Report:          result.Report,
			Reasons:         result.Decision.Reasons,
			StageLatencies:  result.StageLatencies,
			PipelineVersion: result.PipelineVersion,
			RequestID:       requestID,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "case save failed", "case_id", result.CaseID, "error", err)
		}
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
