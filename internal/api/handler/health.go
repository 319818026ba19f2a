package handler

import (
	"net/http"

	"github.com/mcoot/scorekeeper/internal/api/response"
	"github.com/mcoot/scorekeeper/internal/health"
)

// HealthHandler reports server and store health
type HealthHandler struct {
	monitor *health.Monitor
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(monitor *health.Monitor) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
	}
}

// Get handles GET /api/v1/health.
// The server is up whenever it can answer; a lost store is reported as degraded.
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	status := h.monitor.Status()

	resp := response.Health{
		Status:         "ok",
		StoreConnected: status.StoreConnected,
	}
	if !status.StoreConnected {
		resp.Status = "degraded"
	}
	if !status.CheckedAt.IsZero() {
		checkedAt := status.CheckedAt
		resp.CheckedAt = &checkedAt
	}

	response.JSON(w, http.StatusOK, resp)
}
