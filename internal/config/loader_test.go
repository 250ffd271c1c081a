package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/obesiscope/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should point at the local prediction service", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.BackendURL, convey.ShouldEqual, "http://localhost:5000")
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.ChartFormat, convey.ShouldEqual, config.ChartFormatSVG)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// keep any stray ./.env out of the picture
		_ = os.Setenv("OBESISCOPE_ENV_FILE", createTempFile("", "env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("OBESISCOPE_ADDR", ":8080")
			_ = os.Setenv("OBESISCOPE_BACKEND_URL", "http://predictor:5000")
			_ = os.Setenv("OBESISCOPE_REFRESH_INTERVAL_MS", "5000")
			_ = os.Setenv("OBESISCOPE_CHART_FORMAT", "png")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://predictor:5000")
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.ChartFormat, convey.ShouldEqual, config.ChartFormatPNG)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempFile(`
addr: ":9090"
backend_url: "http://file:5000"
chart_width: 1024
`, "yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("OBESISCOPE_CONFIG", tmpFile)
			_ = os.Setenv("OBESISCOPE_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://file:5000")
				convey.So(cfg.ChartWidth, convey.ShouldEqual, 1024)
				convey.So(cfg.ChartHeight, convey.ShouldEqual, 400)
			})
		})

		convey.Convey("When a .env file provides values", func() {
			envFile := createTempFile("OBESISCOPE_BACKEND_URL=http://dotenv:5000\nOBESISCOPE_LOG_LEVEL=debug\n", "env")
			defer func() { _ = os.Remove(envFile) }()
			_ = os.Setenv("OBESISCOPE_ENV_FILE", envFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are picked up through the environment layer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.BackendURL, convey.ShouldEqual, "http://dotenv:5000")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the explicit .env file does not exist", func() {
			_ = os.Setenv("OBESISCOPE_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile(`invalid: yaml: content: [`, "yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("OBESISCOPE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			tmpFile := createTempFile(`addr: ""`, "yaml")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("OBESISCOPE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a relative backend URL", func() {
			_ = os.Setenv("OBESISCOPE_BACKEND_URL", "localhost")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("OBESISCOPE_CHART_WIDTH", "wide")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given configs with a single bad setting", t, func() {
		mutate := map[string]func(c *config.Config){
			"timeout":  func(c *config.Config) { c.RequestTimeoutMS = 0 },
			"interval": func(c *config.Config) { c.RefreshIntervalMS = -1 },
			"width":    func(c *config.Config) { c.ChartWidth = 0 },
			"format":   func(c *config.Config) { c.ChartFormat = "gif" },
			"history":  func(c *config.Config) { c.HistoryLimit = 0 },
		}
		for name, fn := range mutate {
			convey.Convey("When "+name+" is invalid", func() {
				cfg := config.New()
				fn(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"OBESISCOPE_CONFIG",
		"OBESISCOPE_ENV_FILE",
		"OBESISCOPE_ADDR",
		"OBESISCOPE_LOG_LEVEL",
		"OBESISCOPE_BACKEND_URL",
		"OBESISCOPE_REFRESH_INTERVAL_MS",
		"OBESISCOPE_CHART_FORMAT",
		"OBESISCOPE_CHART_WIDTH",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(content, ext string) string {
	tmpFile, err := os.CreateTemp("", "obesiscope-config-*."+ext)
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
