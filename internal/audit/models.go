package audit

import "time"

// Event captures one analysis verdict for the audit trail. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time
	CaseID      string
	RequestID   string
	Decision    string
	RiskLevel   string
	Score       float64
	RulesPassed int
	RulesTotal  int
}
