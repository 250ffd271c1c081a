package api

import (
	"net/http"
	"time"

	"github.com/okian/obesiscope/internal/app/dashboard"
)

// DashboardHandler serves the statistics page and its data.
type DashboardHandler struct {
	source DashboardSource
	clock  CycleClock
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(source DashboardSource, clock CycleClock) *DashboardHandler {
	return &DashboardHandler{source: source, clock: clock}
}

type frameResponse struct {
	dashboard.Frame
	LastUpdate time.Time `json:"last_update"`
}

// HandleDashboardPage handles GET /dashboard.
func (h *DashboardHandler) HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}

// HandleDashboardScript handles GET /dashboard.js.
func (h *DashboardHandler) HandleDashboardScript(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.js")
}

// HandleFrame handles GET /api/dashboard. It answers 503 until the first
// refresh cycle has succeeded.
func (h *DashboardHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	frame, ok := h.source.Frame()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
		return
	}
	resp := frameResponse{Frame: frame, LastUpdate: frame.UpdatedAt}
	if h.clock != nil {
		resp.LastUpdate = h.clock.LastUpdate()
	}
	writeJSON(w, http.StatusOK, resp)
}
