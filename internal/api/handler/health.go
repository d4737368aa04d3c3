package handler

import (
	"net/http"

	"github.com/Ayu-zh/placement-connector/internal/api/response"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
)

// HealthHandler reports server liveness
type HealthHandler struct {
	clock clock.Clock
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(clock clock.Clock) *HealthHandler {
	return &HealthHandler{clock: clock}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Time: h.clock.Now()})
}
