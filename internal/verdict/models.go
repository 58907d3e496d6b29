package verdict

import (
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/rules"
)

// AnalysisRequest carries the upstream pipeline outputs for one document.
type AnalysisRequest struct {
	Quality    domain.QualitySignal
	Extraction domain.ExtractionSignal
	// Advisory is nil when the fraud model produced no usable signal.
	Advisory *domain.AdvisorySignal
}

// AnalysisResult is the complete analysis artifact for one document.
type AnalysisResult struct {
	CaseID     string
	AnalyzedAt time.Time
	Decision   Decision
	Report     *rules.Report

	// StageLatencies holds per-stage wall time in milliseconds.
	StageLatencies  map[string]float64
	PipelineVersion string
}
