// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/silentdrop/internal/app"
	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
)

// maxBodyBytes bounds request bodies for the JSON endpoints.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assess scores one record; source labels where it came from.
	Assess(ctx context.Context, source string, m model.PatientMetrics) (model.Assessment, error)

	// AssessBatch scores every record or none.
	AssessBatch(ctx context.Context, rows []model.PatientMetrics) ([]model.Assessment, error)

	// CheckBatch refuses an empty or oversized batch before rows are read.
	CheckBatch(n int) error

	// Reject counts a record refused at the boundary and returns err.
	Reject(ctx context.Context, source string, err error) error

	// Policy exposes the active scoring policy.
	Policy() (scoring.Policy, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler http.Handler
	statsHandler   *StatsHandler
	scoreHandler   *ScoreHandler
	batchHandler   *BatchHandler
	policyHandler  *PolicyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		scoreHandler:   NewScoreHandler(deps),
		batchHandler:   NewBatchHandler(deps),
		policyHandler:  NewPolicyHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/healthz", RequestID(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.Handle("/metrics", RequestID(s.metricsHandler))
	mux.Handle("/stats", RequestID(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.Handle("/policy", RequestID(MetricsMiddleware(s.policyHandler.HandlePolicy, "policy")))
	mux.Handle("/score", RequestID(MetricsMiddleware(s.scoreHandler.HandleScore, "score")))
	mux.Handle("/score/batch", RequestID(MetricsMiddleware(s.batchHandler.HandleBatch, "score_batch")))
}

// patientRequest mirrors the OpenAPI PatientMetrics schema. Pointer fields
// distinguish an omitted value from an explicit zero.
type patientRequest struct {
	ExpectedGapDays      *float64 `json:"expected_gap_days"`
	RefillDelayDays      *float64 `json:"refill_delay_days"`
	DaysSinceLastContact *float64 `json:"days_since_last_contact"`
	MissedLabTests       *float64 `json:"missed_lab_tests"`
	DaysLateFollowUp     *float64 `json:"days_late_follow_up"`
}

// toMetrics reports the first missing field in scoring order.
func (p patientRequest) toMetrics() (model.PatientMetrics, error) {
	values := map[scoring.Field]*float64{
		scoring.FieldDaysSinceLastContact: p.DaysSinceLastContact,
		scoring.FieldRefillDelayDays:      p.RefillDelayDays,
		scoring.FieldMissedLabTests:       p.MissedLabTests,
		scoring.FieldDaysLateFollowUp:     p.DaysLateFollowUp,
		scoring.FieldExpectedGapDays:      p.ExpectedGapDays,
	}
	for _, f := range scoring.Fields {
		if values[f] == nil {
			return model.PatientMetrics{}, scoring.MissingFieldError(f)
		}
	}
	return model.PatientMetrics{
		ExpectedGapDays:      *p.ExpectedGapDays,
		RefillDelayDays:      *p.RefillDelayDays,
		DaysSinceLastContact: *p.DaysSinceLastContact,
		MissedLabTests:       *p.MissedLabTests,
		DaysLateFollowUp:     *p.DaysLateFollowUp,
	}, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// allowMethods answers 405 with an Allow header when r.Method is not listed.
func allowMethods(w http.ResponseWriter, r *http.Request, op string, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

// writeServiceError maps service and scoring failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, scoring.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", Wrap(op, err))
	case errors.Is(err, service.ErrEmptyBatch):
		writeError(w, http.StatusBadRequest, "empty_batch", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
