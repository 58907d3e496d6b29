package httptransport_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/cases"
	httptransport "veridoc/internal/transport/http"
	"veridoc/internal/verdict"
	"veridoc/internal/verdict/handler"
	"veridoc/pkg/testutil"
)

// newTestRouter wires the full stack with in-memory persistence, so these
// tests exercise middleware, transport, service and rules together.
func newTestRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cases.NewMemoryStore()
	service := verdict.NewService(verdict.DefaultConfig(), store, nil, nil, logger)
	return httptransport.NewRouter(handler.New(service, store, logger), logger)
}

func TestRouter_Healthz(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(), testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))

	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRouter_AssignsRequestID(t *testing.T) {
	rr := testutil.DoRequest(newTestRouter(), testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRouter_HonorsCallerRequestID(t *testing.T) {
	req := testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "caller-id-1")

	rr := testutil.DoRequest(newTestRouter(), req)

	assert.Equal(t, "caller-id-1", rr.Header().Get("X-Request-ID"))
}

func TestRouter_AnalyzeThenFetchCase(t *testing.T) {
	testutil.Given(t, "a fully wired router with in-memory persistence", func(t *testing.T) {
		router := newTestRouter()

		body := handler.AnalyzeRequest{
			Quality: handler.QualityPayload{Score: 0.9, Recommendation: "ACCEPT"},
			Extraction: handler.ExtractionPayload{
				Fields: []handler.FieldPayload{
					{Name: "mrz_line1", Value: "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<", Confidence: 0.98, SourceZone: "MRZ"},
					{Name: "mrz_line2", Value: "L898902C36UTO7408122F1204159ZE184226B<<<<<10", Confidence: 0.98, SourceZone: "MRZ"},
				},
				DocType: "passport",
			},
		}

		testutil.When(t, "a document is analyzed and its case fetched back", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/analyze", body))
			testutil.AssertStatus(t, rr, http.StatusOK)
			resp := testutil.UnmarshalResponse[handler.AnalysisResponse](t, rr)
			require.NotEmpty(t, resp.CaseID)
			// The specimen passport expired long ago, so the date rule flags it.
			require.NotNil(t, resp.RulesReport)
			assert.NotEmpty(t, resp.RulesReport.Violations)

			testutil.Then(t, "the stored case matches the returned artifact", func(t *testing.T) {
				caseRR := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/cases/"+resp.CaseID, nil))
				testutil.AssertStatus(t, caseRR, http.StatusOK)
				record := testutil.UnmarshalResponse[cases.Record](t, caseRR)
				assert.Equal(t, resp.CaseID, record.ID)
				assert.Equal(t, resp.FinalDecision, string(record.Decision))
			})
		})
	})
}
