package api

import (
	"net/http"

	service "github.com/okian/silentdrop/internal/app"
)

// ScoreHandler handles single assessments.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleScore handles POST /score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if !allowMethods(w, r, op, http.MethodPost) {
		return
	}
	var req patientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := req.toMetrics()
	if err != nil {
		writeServiceError(w, op, h.deps.Reject(r.Context(), service.SourceAPI, err))
		return
	}
	a, err := h.deps.Assess(r.Context(), service.SourceAPI, m)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
