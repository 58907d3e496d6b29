package domain

// QualityRecommendation is the quality gate's own verdict on the image.
// The core treats it as informational only.
type QualityRecommendation string

const (
	QualityAccept QualityRecommendation = "ACCEPT"
	QualityReview QualityRecommendation = "REVIEW"
	QualityReject QualityRecommendation = "REJECT"
)

// QualitySignal is the output of the image quality gate collaborator.
type QualitySignal struct {
	Score          float64
	Recommendation QualityRecommendation
	Reasons        []string
}

// ExtractionSignal is the output of the OCR / field-extraction collaborator.
type ExtractionSignal struct {
	Fields        []ExtractedField
	AvgConfidence float64
	DocType       string
	Engine        string
}

// MeanConfidence returns the mean per-field confidence, including fields the
// engine reported as unreadable (confidence 0). Falls back to the
// collaborator-supplied average when no fields were extracted.
func (s ExtractionSignal) MeanConfidence() float64 {
	if len(s.Fields) == 0 {
		return s.AvgConfidence
	}
	var sum float64
	for _, f := range s.Fields {
		sum += f.Confidence
	}
	return sum / float64(len(s.Fields))
}

// AdvisorySignal is the optional output of the advisory fraud analyzer.
// It never forces a decision on its own; deterministic rule failures are
// always authoritative over it.
type AdvisorySignal struct {
	FraudProbability float64
	Assessment       string
	Anomalies        []string
	Recommendation   string
}
