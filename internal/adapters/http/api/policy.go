package api

import (
	"net/http"

	"github.com/okian/silentdrop/internal/domain/scoring"
)

// policyResponse is the wire form of the active scoring policy.
type policyResponse struct {
	Weights         map[scoring.Field]float64 `json:"weights"`
	Caps            map[scoring.Field]float64 `json:"caps"`
	MediumThreshold float64                   `json:"medium_threshold"`
	HighThreshold   float64                   `json:"high_threshold"`
	Comparison      string                    `json:"comparison"`
}

// PolicyHandler exposes the scoring policy.
type PolicyHandler struct {
	deps Dependencies
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(deps Dependencies) *PolicyHandler {
	return &PolicyHandler{deps: deps}
}

// HandlePolicy handles GET /policy requests.
func (h *PolicyHandler) HandlePolicy(w http.ResponseWriter, r *http.Request) {
	const op = "api.policy"
	if !allowMethods(w, r, op, http.MethodGet) {
		return
	}
	p, err := h.deps.Policy()
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, policyResponse{
		Weights:         p.Weights,
		Caps:            p.Caps,
		MediumThreshold: p.MediumThreshold,
		HighThreshold:   p.HighThreshold,
		Comparison:      "strict",
	})
}
