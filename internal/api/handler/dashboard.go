package handler

import (
	"net/http"

	"github.com/Ayu-zh/placement-connector/internal/api/middleware"
	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/services/dashboard"
)

// DashboardHandler handles the statistics endpoint
type DashboardHandler struct {
	dashboard *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}
