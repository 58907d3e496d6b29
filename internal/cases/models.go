package cases

import (
	"time"

	"veridoc/internal/domain"
	"veridoc/internal/rules"
)

// Record is one stored analysis case: the verdict plus everything needed to
// reproduce it. Records are immutable once saved; reviewers read them, they
// never amend them.
type Record struct {
	ID              string               `json:"case_id"`
	CreatedAt       time.Time            `json:"created_at"`
	Decision        domain.FinalDecision `json:"final_decision"`
	Score           float64              `json:"final_score"`
	RiskLevel       domain.Severity      `json:"risk_level"`
	Report          *rules.Report        `json:"rules_report"`
	Reasons         []string             `json:"reasons,omitempty"`
	StageLatencies  map[string]float64   `json:"stage_latencies_ms,omitempty"`
	PipelineVersion string               `json:"pipeline_version"`
	RequestID       string               `json:"request_id,omitempty"`
}
