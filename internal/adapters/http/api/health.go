package api

import (
	"net/http"

	"github.com/okian/obesiscope/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves liveness metrics and dashboard readiness.
type HealthHandler struct {
	metrics   http.Handler
	dashboard DashboardSource
}

// NewHealthHandler creates a health handler. A nil dashboard is never ready.
func NewHealthHandler(dashboard DashboardSource) *HealthHandler {
	return &HealthHandler{
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		dashboard: dashboard,
	}
}

// HandleHealth handles GET /healthz with the Prometheus exposition of the
// console registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz: 200 once a dashboard refresh has been
// applied, 503 before.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.dashboard == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
		return
	}
	frame, ok := h.dashboard.Frame()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"cycle_id":   frame.CycleID,
		"updated_at": frame.UpdatedAt,
	})
}
