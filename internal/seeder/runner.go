package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete seeding run against cfg.BaseURL and returns its
// statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seeder")

	log.Info(ctx, "starting seeding run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := backend.New(cfg.BaseURL, backend.WithTimeout(cfg.Timeout), backend.WithLogger(log))

	// Step 1: the service must answer before we flood it
	before, err := client.Total(ctx).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("service check failed: %w", err)
	}
	log.Info(ctx, "service is reachable", logger.Int("totalPredictions", before))

	// Step 2: generate
	requests := Generate(ctx, cfg.Count)
	stats.Generated = len(requests)

	// Step 3: submit
	if err := Submit(ctx, client, requests, cfg.Workers, cfg.Verbose, stats); err != nil {
		return stats, fmt.Errorf("submission interrupted: %w", err)
	}

	// Step 4: read back what the dashboard will show
	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	case <-time.After(SettleDelay):
	}
	snap, err := client.FetchSnapshot(ctx)
	if err != nil {
		log.Warn(ctx, "snapshot fetch failed", logger.Error(err))
	} else {
		stats.Total = snap.Total
		log.Info(ctx, "service statistics",
			logger.Int("totalPredictions", snap.Total),
			logger.Int("categories", snap.Distribution.Len()),
			logger.Int("ageBuckets", len(snap.Age)))
	}

	// Step 5: keep the generated requests for replay
	if cfg.OutputFile != "" {
		if err := SaveRequests(ctx, cfg.OutputFile, requests); err != nil {
			log.Warn(ctx, "failed to save requests", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// SaveRequests writes requests to filename as a JSON array.
func SaveRequests(ctx context.Context, filename string, requests []prediction.Request) error {
	if len(requests) == 0 {
		return fmt.Errorf("no requests to save")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requests: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "requests saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("totalPredictions", stats.Total),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond),
	}
	for _, c := range prediction.Categories() {
		if n := stats.Categories[c]; n > 0 {
			fields = append(fields, logger.Int(c, n))
		}
	}
	logger.Get().Info(ctx, "final statistics", fields...)
}
