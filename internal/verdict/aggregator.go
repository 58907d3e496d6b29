package verdict

import (
	"fmt"

	"veridoc/internal/domain"
	"veridoc/internal/rules"
)

// Signals are the pipeline outputs the aggregator fuses into one verdict.
// Advisory is optional: when the fraud model was unavailable its weight is
// redistributed over the remaining signals.
type Signals struct {
	Report     *rules.Report
	Quality    domain.QualitySignal
	Extraction domain.ExtractionSignal
	Advisory   *domain.AdvisorySignal
}

// SignalContribution records one signal's normalized value and the weight it
// carried, so a reviewer can see why a score came out the way it did.
type SignalContribution struct {
	Signal string  `json:"signal"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// Decision is the aggregated verdict for one analysis.
type Decision struct {
	Final         domain.FinalDecision `json:"final_decision"`
	Score         float64              `json:"final_score"`
	Reasons       []string             `json:"reasons"`
	Contributions []SignalContribution `json:"contributions"`
}

// Aggregator turns the rule report and collaborator signals into a final
// decision. It is a pure function of its inputs and the policy config, which
// keeps every verdict reproducible from the stored case record.
type Aggregator struct {
	cfg Config
}

func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate fuses the signals into a verdict.
//
// Any CRITICAL rule violation rejects outright, regardless of how clean the
// other signals look: a failed check digit on a pristine scan is forgery, not
// noise. Otherwise the verdict is the weighted mean of the normalized signals
// measured against the policy thresholds, with one asymmetry: a HIGH
// violation never lets a document through as APPROVED, it is downgraded to
// REVIEW for a human to look at.
func (a *Aggregator) Aggregate(sig Signals) Decision {
	contributions, score := a.score(sig)

	decision := Decision{
		Score:         score,
		Contributions: contributions,
	}

	report := sig.Report
	for _, v := range report.Violations {
		decision.Reasons = append(decision.Reasons, fmt.Sprintf("%s (%s): %s", v.RuleID, v.Severity, v.Detail))
	}

	switch {
	case report.HasSeverity(domain.SeverityCritical):
		decision.Final = domain.DecisionRejected
	case score >= a.cfg.Thresholds.Approve:
		decision.Final = domain.DecisionApproved
	case score >= a.cfg.Thresholds.Review:
		decision.Final = domain.DecisionReview
	case score >= a.cfg.Thresholds.Suspicious:
		decision.Final = domain.DecisionSuspicious
	default:
		decision.Final = domain.DecisionRejected
	}

	if decision.Final == domain.DecisionApproved && report.HasSeverity(domain.SeverityHigh) {
		decision.Final = domain.DecisionReview
		decision.Reasons = append(decision.Reasons, "high-severity violation requires manual review")
	}

	return decision
}

// score computes the weighted mean of the normalized signals. When the
// advisory signal is absent its weight is spread over the others in
// proportion to their own weights, so the relative balance between them
// is preserved.
func (a *Aggregator) score(sig Signals) ([]SignalContribution, float64) {
	w := a.cfg.Weights

	contributions := []SignalContribution{
		{Signal: "rules", Value: sig.Report.PassRatio(), Weight: w.Rules},
		{Signal: "quality", Value: clamp01(sig.Quality.Score), Weight: w.Quality},
		{Signal: "ocr_confidence", Value: clamp01(sig.Extraction.MeanConfidence()), Weight: w.OCR},
	}

	if sig.Advisory != nil {
		contributions = append(contributions, SignalContribution{
			Signal: "advisory",
			Value:  clamp01(1 - sig.Advisory.FraudProbability),
			Weight: w.Advisory,
		})
	} else if remaining := w.Rules + w.Quality + w.OCR; remaining > 0 {
		scale := (remaining + w.Advisory) / remaining
		for i := range contributions {
			contributions[i].Weight *= scale
		}
	}

	var score, total float64
	for _, c := range contributions {
		score += c.Value * c.Weight
		total += c.Weight
	}
	if total > 0 {
		score /= total
	}
	return contributions, score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
