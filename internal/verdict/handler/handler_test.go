package handler_test

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,CaseReader

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"veridoc/internal/cases"
	"veridoc/internal/domain"
	"veridoc/internal/rules"
	"veridoc/internal/verdict"
	"veridoc/internal/verdict/handler"
	"veridoc/internal/verdict/handler/mocks"
	"veridoc/pkg/platform/sentinel"
	"veridoc/pkg/testutil"
)

type fixture struct {
	service *mocks.MockService
	reader  *mocks.MockCaseReader
	router  chi.Router
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockService(ctrl)
	reader := mocks.NewMockCaseReader(ctrl)

	h := handler.New(service, reader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := chi.NewRouter()
	h.Register(router)

	return &fixture{service: service, reader: reader, router: router}
}

func validBody() handler.AnalyzeRequest {
	return handler.AnalyzeRequest{
		Quality: handler.QualityPayload{Score: 0.9, Recommendation: "ACCEPT"},
		Extraction: handler.ExtractionPayload{
			Fields: []handler.FieldPayload{
				{Name: "mrz_line1", Value: "P<UTO...", Confidence: 0.97, SourceZone: "MRZ"},
			},
			AvgConfidence: 0.97,
			DocType:       "passport",
		},
	}
}

func sampleResult() *verdict.AnalysisResult {
	return &verdict.AnalysisResult{
		CaseID:     "11111111-2222-3333-4444-555555555555",
		AnalyzedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Decision: verdict.Decision{
			Final:   domain.DecisionApproved,
			Score:   0.97,
			Reasons: []string{},
		},
		Report: &rules.Report{
			RulesPassed: 10,
			RulesTotal:  10,
			RiskLevel:   domain.SeverityLow,
			Violations:  []rules.RuleResult{},
			Version:     rules.Version,
		},
		StageLatencies:  map[string]float64{"rules_ms": 1.2, "aggregate_ms": 0.1},
		PipelineVersion: verdict.PipelineVersion,
	}
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("returns analysis artifact", func(t *testing.T) {
		f := newFixture(t)
		f.service.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(sampleResult(), nil)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", validBody()))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.AnalysisResponse](t, rr)
		assert.Equal(t, "11111111-2222-3333-4444-555555555555", resp.CaseID)
		assert.Equal(t, string(domain.DecisionApproved), resp.FinalDecision)
		assert.InDelta(t, 0.97, resp.FinalScore, 1e-9)
		require.NotNil(t, resp.RulesReport)
		assert.Equal(t, 10, resp.RulesReport.RulesPassed)
	})

	t.Run("drops advisory payloads that report an upstream error", func(t *testing.T) {
		f := newFixture(t)
		var captured verdict.AnalysisRequest
		f.service.EXPECT().Analyze(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req verdict.AnalysisRequest) (*verdict.AnalysisResult, error) {
				captured = req
				return sampleResult(), nil
			})

		body := validBody()
		body.Advisory = &handler.AdvisoryPayload{FraudProbability: 0.9, Error: "model timeout"}
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", body))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Nil(t, captured.Advisory)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		f := newFixture(t)

		rr := testutil.DoRequest(f.router, testutil.NewRequestWithBody(t, http.MethodPost, "/analyze", "{not json"))

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "bad_request")
	})

	t.Run("rejects invalid payload values", func(t *testing.T) {
		f := newFixture(t)

		body := validBody()
		body.Quality.Score = 1.5
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", body))

		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
		testutil.AssertErrorCode(t, rr, "validation_error")
	})

	t.Run("rejects unknown source zones", func(t *testing.T) {
		f := newFixture(t)

		body := validBody()
		body.Extraction.Fields[0].SourceZone = "BARCODE"
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", body))

		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
	})

	t.Run("maps service failures to internal error", func(t *testing.T) {
		f := newFixture(t)
		f.service.EXPECT().Analyze(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", validBody()))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		errResp := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "internal_error", errResp["error"])
		assert.NotContains(t, errResp, "error_description")
	})
}

func TestHandleGetCase(t *testing.T) {
	t.Run("returns stored case", func(t *testing.T) {
		f := newFixture(t)
		record := cases.Record{ID: "case-1", Decision: domain.DecisionReview, Score: 0.7}
		f.reader.EXPECT().Get(gomock.Any(), "case-1").Return(record, nil)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/cases/case-1", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[cases.Record](t, rr)
		assert.Equal(t, "case-1", resp.ID)
		assert.Equal(t, domain.DecisionReview, resp.Decision)
	})

	t.Run("maps missing case to 404", func(t *testing.T) {
		f := newFixture(t)
		f.reader.EXPECT().Get(gomock.Any(), "nope").Return(cases.Record{}, sentinel.ErrNotFound)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/cases/nope", nil))

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, "not_found")
	})
}

func TestHandleListCases(t *testing.T) {
	t.Run("lists with default limit", func(t *testing.T) {
		f := newFixture(t)
		f.reader.EXPECT().List(gomock.Any(), 50).Return([]cases.Record{{ID: "a"}, {ID: "b"}}, nil)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/cases", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.CaseListResponse](t, rr)
		assert.Equal(t, 2, resp.Count)
	})

	t.Run("honors explicit limit", func(t *testing.T) {
		f := newFixture(t)
		f.reader.EXPECT().List(gomock.Any(), 5).Return(nil, nil)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/cases?limit=5", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[handler.CaseListResponse](t, rr)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		f := newFixture(t)

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/cases?limit=lots", nil))

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
