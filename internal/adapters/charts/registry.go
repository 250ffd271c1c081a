// Package charts keeps the live chart instance of every dashboard region.
//
// A region never holds more than one instance: Upsert destroys the previous
// handle before asking the renderer for the next one.
package charts

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/obesiscope/internal/domain/chartspec"
	"github.com/okian/obesiscope/pkg/logger"
	"github.com/okian/obesiscope/pkg/metrics"
)

// Handle is one rendered chart instance bound to a region.
type Handle interface {
	// Spec returns the specification the instance was created from.
	Spec() chartspec.Spec
	// Bytes returns the rendered image, or nil once destroyed.
	Bytes() []byte
	// ContentType is the MIME type of Bytes.
	ContentType() string
	// Destroy releases the instance. It is safe to call more than once.
	Destroy()
}

// Renderer creates chart instances.
type Renderer interface {
	Create(key string, spec chartspec.Spec) (Handle, error)
}

// Registry maps region keys to their live handle.
type Registry struct {
	mu       sync.RWMutex
	renderer Renderer
	live     map[string]Handle
	closed   bool
	logger   logger.Logger
}

// RegistryOption applies a configuration option to the Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry backed by renderer.
func NewRegistry(renderer Renderer, opts ...RegistryOption) *Registry {
	r := &Registry{
		renderer: renderer,
		live:     make(map[string]Handle),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	metrics.UpdateChartsLive(0)
	return r
}

// Upsert replaces the instance at key with one built from spec. The old
// instance is destroyed first; if creation then fails the region is left
// empty and the error is returned.
func (r *Registry) Upsert(ctx context.Context, key string, spec chartspec.Spec) error {
	if key == "" {
		return ErrEmptyKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}

	if old, ok := r.live[key]; ok {
		old.Destroy()
		delete(r.live, key)
	}

	h, err := r.renderer.Create(key, spec)
	metrics.UpdateChartsLive(len(r.live))
	if err != nil {
		r.logger.Error(ctx, "chart creation failed", logger.String("chart", key), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrRender, key, err)
	}
	r.live[key] = h
	metrics.UpdateChartsLive(len(r.live))
	metrics.RecordChartRendered(key)
	return nil
}

// Get returns the live handle at key.
func (r *Registry) Get(key string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.live[key]
	return h, ok
}

// Keys lists occupied regions in lexical order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.live))
	for k := range r.live {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Live returns the number of live instances.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

// Close destroys every instance. Later Upserts fail with ErrRegistryClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	for k, h := range r.live {
		h.Destroy()
		delete(r.live, k)
	}
	r.closed = true
	metrics.UpdateChartsLive(0)
	return nil
}
