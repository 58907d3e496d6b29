package handler

import (
	"time"

	"veridoc/internal/cases"
	"veridoc/internal/rules"
	"veridoc/internal/verdict"
)

// AnalysisResponse is the HTTP response for POST /analyze.
type AnalysisResponse struct {
	CaseID          string                       `json:"case_id"`
	FinalDecision   string                       `json:"final_decision"`
	FinalScore      float64                      `json:"final_score"`
	Reasons         []string                     `json:"reasons"`
	Signals         []verdict.SignalContribution `json:"signals"`
	RulesReport     *rules.Report                `json:"rules_report"`
	AnalyzedAt      time.Time                    `json:"analyzed_at"`
	StageLatencies  map[string]float64           `json:"stage_latencies_ms"`
	PipelineVersion string                       `json:"pipeline_version"`
}

// FromResult converts an analysis result to an HTTP response.
func FromResult(result *verdict.AnalysisResult) *AnalysisResponse {
	return &AnalysisResponse{
		CaseID:          result.CaseID,
		FinalDecision:   string(result.Decision.Final),
		FinalScore:      result.Decision.Score,
		Reasons:         result.Decision.Reasons,
		Signals:         result.Decision.Contributions,
		RulesReport:     result.Report,
		AnalyzedAt:      result.AnalyzedAt,
		StageLatencies:  result.StageLatencies,
		PipelineVersion: result.PipelineVersion,
	}
}

// CaseListResponse is the HTTP response for GET /cases.
type CaseListResponse struct {
	Cases []cases.Record `json:"cases"`
	Count int            `json:"count"`
}
