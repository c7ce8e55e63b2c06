package api

import (
	"fmt"
	"net/http"

	service "github.com/okian/silentdrop/internal/app"
	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
)

type batchRequest struct {
	Patients []patientRequest `json:"patients"`
}

type batchResponse struct {
	Assessments []model.Assessment `json:"assessments"`
}

// BatchHandler handles batch assessments.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// HandleBatch handles POST /score/batch requests.
func (h *BatchHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_batch"
	if !allowMethods(w, r, op, http.MethodPost) {
		return
	}
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.CheckBatch(len(req.Patients)); err != nil {
		writeServiceError(w, op, err)
		return
	}
	rows := make([]model.PatientMetrics, len(req.Patients))
	for i, p := range req.Patients {
		m, err := p.toMetrics()
		if err == nil {
			err = scoring.ValidateMetrics(m)
		}
		if err != nil {
			err = h.deps.Reject(r.Context(), service.SourceBatch, fmt.Errorf("row %d: %w", i, err))
			writeServiceError(w, op, err)
			return
		}
		rows[i] = m
	}
	out, err := h.deps.AssessBatch(r.Context(), rows)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Assessments: out})
}
