// Package seeder fills a prediction service with synthetic requests so the
// dashboard has something to show. It generates valid biometric records,
// submits them concurrently and reports the resulting statistics.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Prediction service origin
	Count      int           // Number of requests to generate
	Workers    int           // Concurrent submitters
	Timeout    time.Duration // Per-request timeout
	OutputFile string        // Where generated requests are written; empty skips saving
	Verbose    bool          // Log every progress tick
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Rejected   int // 4xx/5xx from the service
	Failed     int // transport failures
	Categories map[string]int
	Total      int // total_predictions reported after the run
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
