// Package config defines console configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading accepts context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Chart output formats.
const (
	ChartFormatSVG = "svg"
	ChartFormatPNG = "png"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the console, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BackendURL is the origin of the prediction service.
	BackendURL string `koanf:"backend_url"`

	// RequestTimeoutMS bounds each backend call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RefreshIntervalMS is the dashboard refresh period.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// ChartWidth and ChartHeight size rendered charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// ChartFormat is svg or png.
	ChartFormat string `koanf:"chart_format"`

	// HistoryLimit caps GET /api/history.
	HistoryLimit int `koanf:"history_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		BackendURL:        "http://localhost:5000",
		RequestTimeoutMS:  10_000,
		RefreshIntervalMS: 30_000,
		ChartWidth:        800,
		ChartHeight:       400,
		ChartFormat:       ChartFormatSVG,
		HistoryLimit:      100,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.RefreshIntervalMS <= 0:
		return fmt.Errorf("%w: refresh_interval_ms must be positive", ErrInvalidConfig)
	case c.ChartWidth <= 0 || c.ChartHeight <= 0:
		return fmt.Errorf("%w: chart dimensions must be positive", ErrInvalidConfig)
	case c.ChartFormat != ChartFormatSVG && c.ChartFormat != ChartFormatPNG:
		return fmt.Errorf("%w: unknown chart_format %q", ErrInvalidConfig, c.ChartFormat)
	case c.HistoryLimit <= 0:
		return fmt.Errorf("%w: history_limit must be positive", ErrInvalidConfig)
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend_url must be an absolute URL, got %q", ErrInvalidConfig, c.BackendURL)
	}
	return nil
}
