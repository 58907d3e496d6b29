package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/cases"
	"veridoc/internal/verdict"
	"veridoc/pkg/platform/sentinel"
	"veridoc/pkg/requestcontext"
)

// maxBodyBytes bounds the analyze request body; extraction payloads are
// small, anything larger is not a document analysis request.
const maxBodyBytes = 1 << 20

// Service defines the interface for document analysis.
type Service interface {
	Analyze(ctx context.Context, req verdict.AnalysisRequest) (*verdict.AnalysisResult, error)
}

// CaseReader exposes stored case records for review.
type CaseReader interface {
	Get(ctx context.Context, id string) (cases.Record, error)
	List(ctx context.Context, limit int) ([]cases.Record, error)
}

// Handler wires analysis endpoints to the verdict service.
type Handler struct {
	service Service
	reader  CaseReader
	logger  *slog.Logger
}

// New constructs an analysis handler with its dependencies.
func New(service Service, reader CaseReader, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		reader:  reader,
		logger:  logger,
	}
}

// Register mounts analysis endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/analyze", h.HandleAnalyze)
	r.Get("/cases", h.HandleListCases)
	r.Get("/cases/{caseID}", h.HandleGetCase)
}

// HandleAnalyze handles POST /analyze requests.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body is not valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	result, err := h.service.Analyze(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis failed",
			"request_id", requestID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.logger.InfoContext(ctx, "analysis handled",
		"request_id", requestID,
		"case_id", result.CaseID,
		"decision", result.Decision.Final,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, FromResult(result))
}

// HandleGetCase handles GET /cases/{caseID} requests.
func (h *Handler) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := chi.URLParam(r, "caseID")

	record, err := h.reader.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "case not found")
			return
		}
		h.logger.ErrorContext(ctx, "case lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", caseID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// HandleListCases handles GET /cases requests.
func (h *Handler) HandleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.reader.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "case listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if records == nil {
		records = []cases.Record{}
	}

	writeJSON(w, http.StatusOK, CaseListResponse{Cases: records, Count: len(records)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the error body. Internal errors omit the description so
// backend details never leak to callers.
func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" && status < http.StatusInternalServerError {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}
