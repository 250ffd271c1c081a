// Package dashboard polls the statistics endpoints and keeps the dashboard
// charts and counters in step with the latest complete snapshot.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/domain/chartspec"
	"github.com/okian/obesiscope/internal/domain/stats"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/okian/obesiscope/pkg/metrics"
)

const defaultInterval = 30 * time.Second

// Fetcher assembles one statistics snapshot.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (stats.Snapshot, error)
}

// Charts is the region store refreshed each cycle.
type Charts interface {
	Upsert(ctx context.Context, key string, spec chartspec.Spec) error
}

// View receives the dashboard counters.
type View interface {
	SetTotal(total int)
	// SetLastUpdate is called when a cycle starts, whatever its outcome.
	SetLastUpdate(t time.Time)
}

// Frame is the last successfully applied cycle.
type Frame struct {
	CycleID   string             `json:"cycle_id"`
	Total     int                `json:"total_predictions"`
	UpdatedAt time.Time          `json:"updated_at"`
	Charts    []chartspec.Region `json:"charts"`
}

// Controller runs refresh cycles.
type Controller struct {
	fetcher  Fetcher
	charts   Charts
	view     View
	interval time.Duration
	logger   logger.Logger
	now      func() time.Time

	// cycles are serialised so a slow cycle never interleaves with the next.
	cycleMu sync.Mutex

	mu    sync.RWMutex
	frame Frame
	ok    bool
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithInterval sets the refresh period.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithView attaches a view for the counters.
func WithView(v View) Option {
	return func(c *Controller) {
		if v != nil {
			c.view = v
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController returns a controller that fetches with f and draws into ch.
func NewController(f Fetcher, ch Charts, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  f,
		charts:   ch,
		view:     nopView{},
		interval: defaultInterval,
		logger:   logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the refresh period.
func (c *Controller) Interval() time.Duration { return c.interval }

// Refresh runs one cycle. If any of the five documents fails to load the
// charts and total are left exactly as they were and the *FetchError is
// returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	cycleID := uuid.NewString()
	start := c.now()
	c.view.SetLastUpdate(start)

	snap, err := c.fetcher.FetchSnapshot(ctx)
	if err != nil {
		metrics.RecordRefreshCycle("failure", time.Since(start))
		fields := []logger.Field{logger.String("cycle", cycleID), logger.Error(err)}
		var fe *backend.FetchError
		if errors.As(err, &fe) {
			fields = append(fields, logger.String("endpoint", fe.Endpoint))
		}
		c.logger.Warn(ctx, "dashboard refresh failed", fields...)
		return err
	}

	regions := chartspec.Build(snap)
	var renderErr error
	for _, r := range regions {
		if err := c.charts.Upsert(ctx, r.Key, r.Spec); err != nil {
			renderErr = errors.Join(renderErr, err)
		}
	}
	c.view.SetTotal(snap.Total)
	metrics.UpdateTotalPredictions(snap.Total)

	c.mu.Lock()
	c.frame = Frame{CycleID: cycleID, Total: snap.Total, UpdatedAt: start, Charts: regions}
	c.ok = true
	c.mu.Unlock()

	if renderErr != nil {
		metrics.RecordRefreshCycle("render_failure", time.Since(start))
		c.logger.Error(ctx, "dashboard charts partially rendered",
			logger.String("cycle", cycleID), logger.Error(renderErr))
		return renderErr
	}

	metrics.RecordRefreshCycle("success", time.Since(start))
	c.logger.Debug(ctx, "dashboard refreshed",
		logger.String("cycle", cycleID),
		logger.Int("total", snap.Total),
		logger.Duration("took", time.Since(start)))
	return nil
}

// Frame returns the last good frame, if any cycle has succeeded.
func (c *Controller) Frame() (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame, c.ok
}

// Start runs a cycle now and then every interval until the task is
// stopped or ctx is cancelled. Failed cycles are logged and do not stop
// the loop.
func (c *Controller) Start(ctx context.Context) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		_ = c.Refresh(ctx)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = c.Refresh(ctx)
			}
		}
	}()

	return t
}

// Task is a running refresh loop.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for an in-flight cycle to finish.
// It is safe to call more than once.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed when the loop has exited.
func (t *Task) Done() <-chan struct{} { return t.done }

type nopView struct{}

func (nopView) SetTotal(int)             {}
func (nopView) SetLastUpdate(time.Time) {}
