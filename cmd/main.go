package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/adapters/charts"
	"github.com/okian/obesiscope/internal/adapters/http/api"
	"github.com/okian/obesiscope/internal/adapters/http/site"
	"github.com/okian/obesiscope/internal/adapters/http/swagger"
	"github.com/okian/obesiscope/internal/app/dashboard"
	"github.com/okian/obesiscope/internal/app/form"
	"github.com/okian/obesiscope/internal/config"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/okian/obesiscope/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

// console holds the wired components of one process.
type console struct {
	mux      *http.ServeMux
	client   *backend.Client
	registry *charts.Registry
	form     *form.Controller
	dash     *dashboard.Controller
	view     *dashboard.RecordingView
}

// newConsole wires the backend client, chart registry, controllers and HTTP
// routes from cfg. Nothing is started.
func newConsole(ctx context.Context, cfg *config.Config, log logger.Logger) *console {
	client := backend.New(cfg.BackendURL,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithLogger(log.Named("backend")),
	)

	renderer := charts.NewGoChartRenderer(
		charts.WithSize(cfg.ChartWidth, cfg.ChartHeight),
		charts.WithFormat(cfg.ChartFormat),
	)
	registry := charts.NewRegistry(renderer, charts.WithLogger(log.Named("charts")))

	view := &dashboard.RecordingView{}
	dash := dashboard.NewController(client, registry,
		dashboard.WithInterval(cfg.RefreshInterval()),
		dashboard.WithView(view),
		dashboard.WithLogger(log.Named("dashboard")),
	)
	formCtl := form.NewController(client, form.WithLogger(log.Named("form")))

	mux := http.NewServeMux()

	// API docs under /api-docs
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(api.Dependencies{
		Form:         formCtl,
		Dashboard:    dash,
		Charts:       registry,
		Catalog:      client,
		Clock:        view,
		HistoryLimit: cfg.HistoryLimit,
	}, api.WithLogger(log.Named("api")))
	apiServer.Register(ctx, mux)

	// Form page catches everything else
	site.Register(ctx, mux)

	return &console{
		mux:      mux,
		client:   client,
		registry: registry,
		form:     formCtl,
		dash:     dash,
		view:     view,
	}
}

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	app := newConsole(ctx, cfg, loggerInstance)
	defer func() {
		if err := app.registry.Close(); err != nil {
			loggerInstance.Error(ctx, "chart registry close failed", logger.Error(err))
		}
	}()

	// Periodic dashboard refresh; the first cycle runs immediately
	task := app.dash.Start(ctx)
	defer task.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend", cfg.BackendURL),
			logger.Duration("refresh", cfg.RefreshInterval()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater updates process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
