// Package rules runs the deterministic ICAO 9303 validation rules over
// extracted document fields and condenses the outcome into a report the
// decision aggregator can consume. Rule evaluation is pure computation and
// stateless across requests.
package rules

import "veridoc/internal/domain"

// Version identifies the rule set; carried into stored cases so old
// decisions stay explainable after the rules evolve.
const Version = "passport-td3-v1"

// RuleResult is the outcome of one rule for one analysis. Results are
// append-only: once collected into a Report they are never edited.
type RuleResult struct {
	RuleID   string          `json:"rule_id"`
	RuleName string          `json:"rule_name"`
	Passed   bool            `json:"passed"`
	Severity domain.Severity `json:"severity"`
	Detail   string          `json:"detail,omitempty"`
}

// Report is the aggregate outcome of one rules run. Skipped rules (an
// optional field that is entirely filler) are excluded from both
// RulesTotal and Results.
type Report struct {
	RulesPassed int             `json:"rules_passed"`
	RulesTotal  int             `json:"rules_total"`
	RiskLevel   domain.Severity `json:"risk_level"`
	Violations  []RuleResult    `json:"violations"`
	Results     []RuleResult    `json:"results"`
	Version     string          `json:"version"`
}

// PassRatio returns rules_passed/rules_total, or 0 for an empty run.
func (r *Report) PassRatio() float64 {
	if r.RulesTotal == 0 {
		return 0
	}
	return float64(r.RulesPassed) / float64(r.RulesTotal)
}

// HasSeverity reports whether any violation is at least as severe as sev.
func (r *Report) HasSeverity(sev domain.Severity) bool {
	for _, v := range r.Violations {
		if v.Severity.AtLeast(sev) {
			return true
		}
	}
	return false
}

// buildReport assembles a Report from evaluated results, preserving rule
// order. RiskLevel is the maximum severity among failures, or LOW when
// everything passed.
func buildReport(results []RuleResult) *Report {
	report := &Report{
		RulesTotal: len(results),
		RiskLevel:  domain.SeverityLow,
		Violations: []RuleResult{},
		Results:    results,
		Version:    Version,
	}
	for _, res := range results {
		if res.Passed {
			report.RulesPassed++
			continue
		}
		report.Violations = append(report.Violations, res)
		report.RiskLevel = domain.MaxSeverity(report.RiskLevel, res.Severity)
	}
	return report
}
