package seeder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"
)

// Predictor submits one request to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, r prediction.Request) backend.Result[prediction.Result]
}

// Submit sends requests to p from a fixed pool of workers and records the
// outcome counts into stats. It returns early with ctx.Err() on cancellation.
func Submit(ctx context.Context, p Predictor, requests []prediction.Request, workers int, verbose bool, stats *Stats) error {
	if workers < 1 {
		workers = 1
	}
	log := logger.Get().Named("seeder")
	log.Info(ctx, "submitting requests", logger.Int("count", len(requests)), logger.Int("workers", workers))

	var (
		submitted, successful, rejected, failed int64
		mu                                      sync.Mutex
		categories                              = make(map[string]int)
	)

	reqChan := make(chan prediction.Request, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range reqChan {
				res, err := p.Predict(ctx, r).Unwrap()
				n := atomic.AddInt64(&submitted, 1)

				switch {
				case err == nil:
					atomic.AddInt64(&successful, 1)
					mu.Lock()
					categories[res.Prediction]++
					mu.Unlock()
				case errors.Is(err, backend.ErrServer):
					atomic.AddInt64(&rejected, 1)
					log.Debug(ctx, "request rejected", logger.Error(err))
				default:
					atomic.AddInt64(&failed, 1)
					log.Debug(ctx, "request failed", logger.Error(err))
				}

				if verbose && n%progressEvery == 0 {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(n)),
						logger.Int("of", len(requests)),
						logger.Int("successful", int(atomic.LoadInt64(&successful))))
				}
			}
		}()
	}

	go func() {
		defer close(reqChan)
		for _, r := range requests {
			select {
			case <-ctx.Done():
				return
			case reqChan <- r:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Rejected = int(atomic.LoadInt64(&rejected))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Categories = categories

	log.Info(ctx, "submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))

	return ctx.Err()
}
