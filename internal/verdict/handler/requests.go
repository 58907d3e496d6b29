package handler

import (
	"fmt"
	"strings"

	"veridoc/internal/domain"
	"veridoc/internal/verdict"
)

// AnalyzeRequest is the HTTP request body for POST /analyze. It carries the
// upstream pipeline outputs: image quality, OCR extraction and, optionally,
// the advisory fraud signal.
type AnalyzeRequest struct {
	Quality    QualityPayload    `json:"quality"`
	Extraction ExtractionPayload `json:"extraction"`
	Advisory   *AdvisoryPayload  `json:"advisory,omitempty"`
}

type QualityPayload struct {
	Score          float64  `json:"score"`
	Recommendation string   `json:"recommendation"`
	Reasons        []string `json:"reasons,omitempty"`
}

type ExtractionPayload struct {
	Fields        []FieldPayload `json:"fields"`
	AvgConfidence float64        `json:"avg_confidence"`
	DocType       string         `json:"doc_type"`
	Engine        string         `json:"engine,omitempty"`
}

type FieldPayload struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	SourceZone string  `json:"source_zone"`
}

type AdvisoryPayload struct {
	FraudProbability float64  `json:"fraud_probability"`
	Assessment       string   `json:"assessment"`
	Anomalies        []string `json:"anomalies,omitempty"`
	Recommendation   string   `json:"recommendation,omitempty"`
	// Error is set by the upstream pipeline when the advisory model failed;
	// the payload then carries no usable signal.
	Error string `json:"error,omitempty"`
}

// Validate checks the request. Values outside [0, 1] are caller bugs and
// rejected rather than clamped.
func (r *AnalyzeRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request body is required")
	}
	if r.Quality.Score < 0 || r.Quality.Score > 1 {
		return fmt.Errorf("quality.score must be within [0, 1]")
	}
	if r.Extraction.AvgConfidence < 0 || r.Extraction.AvgConfidence > 1 {
		return fmt.Errorf("extraction.avg_confidence must be within [0, 1]")
	}
	if len(r.Extraction.Fields) == 0 {
		return fmt.Errorf("extraction.fields is required")
	}
	for i, f := range r.Extraction.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("extraction.fields[%d].name is required", i)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			return fmt.Errorf("extraction.fields[%d].confidence must be within [0, 1]", i)
		}
		switch f.SourceZone {
		case string(domain.ZoneMRZ), string(domain.ZoneVisual):
		default:
			return fmt.Errorf("extraction.fields[%d].source_zone must be %q or %q",
				i, domain.ZoneMRZ, domain.ZoneVisual)
		}
	}
	if r.Advisory != nil && r.Advisory.Error == "" {
		if p := r.Advisory.FraudProbability; p < 0 || p > 1 {
			return fmt.Errorf("advisory.fraud_probability must be within [0, 1]")
		}
	}
	return nil
}

// ToDomain converts the validated request into the service input. An
// advisory payload that reports an upstream error is dropped, so the
// aggregator treats the signal as absent.
func (r *AnalyzeRequest) ToDomain() verdict.AnalysisRequest {
	fields := make([]domain.ExtractedField, 0, len(r.Extraction.Fields))
	for _, f := range r.Extraction.Fields {
		fields = append(fields, domain.ExtractedField{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence,
			SourceZone: domain.SourceZone(f.SourceZone),
		})
	}

	req := verdict.AnalysisRequest{
		Quality: domain.QualitySignal{
			Score:          r.Quality.Score,
			Recommendation: domain.QualityRecommendation(r.Quality.Recommendation),
			Reasons:        r.Quality.Reasons,
		},
		Extraction: domain.ExtractionSignal{
			Fields:        fields,
			AvgConfidence: r.Extraction.AvgConfidence,
			DocType:       r.Extraction.DocType,
			Engine:        r.Extraction.Engine,
		},
	}

	if a := r.Advisory; a != nil && a.Error == "" {
		req.Advisory = &domain.AdvisorySignal{
			FraudProbability: a.FraudProbability,
			Assessment:       a.Assessment,
			Anomalies:        a.Anomalies,
			Recommendation:   a.Recommendation,
		}
	}
	return req
}
