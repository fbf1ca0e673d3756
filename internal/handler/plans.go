package handler

import (
	"net/http"

	"formzen/internal/httputil"
	"formzen/internal/plans"
)

// PlansHandler serves the pricing plans
type PlansHandler struct {
	registry *plans.Registry
}

// NewPlansHandler creates a new plans handler
func NewPlansHandler(registry *plans.Registry) *PlansHandler {
	return &PlansHandler{registry: registry}
}

// ListPlans returns the plans in display order
// GET /api/plans
func (h *PlansHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.List())
}
