// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/adapters/charts"
	"github.com/okian/obesiscope/internal/app/dashboard"
	"github.com/okian/obesiscope/internal/app/form"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/internal/domain/stats"
	"github.com/okian/obesiscope/pkg/logger"
)

// FormController is the prediction form behind /api/predict and /api/total.
type FormController interface {
	Submit(ctx context.Context, v form.View, req prediction.Request) (form.ResultPanel, error)
	LoadTotal(ctx context.Context) (string, error)
}

// DashboardSource exposes the last applied refresh cycle.
type DashboardSource interface {
	Frame() (dashboard.Frame, bool)
}

// ChartStore serves rendered chart instances.
type ChartStore interface {
	Get(key string) (charts.Handle, bool)
}

// Catalog proxies the descriptive service endpoints.
type Catalog interface {
	Features(ctx context.Context) backend.Result[prediction.FeatureInfo]
	History(ctx context.Context, limit int) backend.Result[[]stats.HistoryEntry]
}

// CycleClock reports when the latest refresh cycle started.
type CycleClock interface {
	LastUpdate() time.Time
}

// Dependencies bundles everything the handlers need.
type Dependencies struct {
	Form         FormController
	Dashboard    DashboardSource
	Charts       ChartStore
	Catalog      Catalog
	Clock        CycleClock
	HistoryLimit int
}

// Server wires HTTP routes for the console.
type Server struct {
	healthHandler    *HealthHandler
	predictHandler   *PredictHandler
	dashboardHandler *DashboardHandler
	chartHandler     *ChartHandler
	catalogHandler   *CatalogHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	logger logger.Logger
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(deps.Dashboard),
		predictHandler:   NewPredictHandler(deps.Form, cfg.logger),
		dashboardHandler: NewDashboardHandler(deps.Dashboard, deps.Clock),
		chartHandler:     NewChartHandler(deps.Charts),
		catalogHandler:   NewCatalogHandler(deps.Catalog, deps.HistoryLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboardPage)
	mux.HandleFunc("/dashboard.js", s.dashboardHandler.HandleDashboardScript)
	mux.HandleFunc("/api/dashboard", MetricsMiddleware(s.dashboardHandler.HandleFrame, "dashboard"))
	mux.HandleFunc("/api/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/api/total", MetricsMiddleware(s.predictHandler.HandleTotal, "total"))
	mux.HandleFunc("/api/features", MetricsMiddleware(s.catalogHandler.HandleFeatures, "features"))
	mux.HandleFunc("/api/history", MetricsMiddleware(s.catalogHandler.HandleHistory, "history"))
	mux.HandleFunc("/charts/{key}", MetricsMiddleware(s.chartHandler.HandleChart, "charts"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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
