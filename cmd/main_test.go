package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend/backendtest"
	"github.com/okian/obesiscope/internal/config"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("OBESISCOPE_ADDR", ":8080")
		_ = os.Setenv("OBESISCOPE_REFRESH_INTERVAL_MS", "5000")
		defer func() {
			_ = os.Unsetenv("OBESISCOPE_ADDR")
			_ = os.Unsetenv("OBESISCOPE_REFRESH_INTERVAL_MS")
		}()

		convey.Convey("Then configuration should pick them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 5*time.Second)
		})
	})

	convey.Convey("Given an empty listen address", t, func() {
		_ = os.Setenv("OBESISCOPE_ADDR", "")
		defer func() { _ = os.Unsetenv("OBESISCOPE_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestConsoleWiring(t *testing.T) {
	convey.Convey("Given a console wired to a fake prediction service", t, func() {
		srv := backendtest.New()
		defer srv.Close()

		cfg := config.New()
		cfg.BackendURL = srv.URL
		cfg.RefreshIntervalMS = 50
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		app := newConsole(ctx, cfg, logger.Nop())
		defer func() { _ = app.registry.Close() }()

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			app.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("When the dashboard task runs", func() {
			task := app.dash.Start(ctx)
			defer task.Stop()

			convey.So(waitFor(func() bool { _, ok := app.dash.Frame(); return ok }), convey.ShouldBeTrue)

			convey.Convey("Then every page and route answers", func() {
				convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/api/dashboard").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/charts/ageChart").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the view holds the total", func() {
				total, ok := app.view.Total()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(total, convey.ShouldEqual, 49)
				convey.So(app.registry.Live(), convey.ShouldEqual, 4)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop should return when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
