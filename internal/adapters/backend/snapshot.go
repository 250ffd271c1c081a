package backend

import (
	"context"
	"time"

	"github.com/okian/obesiscope/internal/domain/stats"
	"golang.org/x/sync/errgroup"
)

// FetchSnapshot requests the five dashboard documents concurrently. It
// returns a *FetchError naming the first endpoint that failed; sibling
// requests are cancelled and no partial snapshot is returned.
func (c *Client) FetchSnapshot(ctx context.Context) (stats.Snapshot, error) {
	var snap stats.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := c.Total(gctx).Unwrap()
		if err != nil {
			return &FetchError{Endpoint: EndpointTotal, Err: err}
		}
		snap.Total = v
		return nil
	})
	g.Go(func() error {
		v, err := c.Distribution(gctx).Unwrap()
		if err != nil {
			return &FetchError{Endpoint: EndpointDistribution, Err: err}
		}
		snap.Distribution = v
		return nil
	})
	g.Go(func() error {
		v, err := c.GenderStats(gctx).Unwrap()
		if err != nil {
			return &FetchError{Endpoint: EndpointGenderStats, Err: err}
		}
		snap.Gender = v
		return nil
	})
	g.Go(func() error {
		v, err := c.AgeStats(gctx).Unwrap()
		if err != nil {
			return &FetchError{Endpoint: EndpointAgeStats, Err: err}
		}
		snap.Age = v
		return nil
	})
	g.Go(func() error {
		v, err := c.ActivityStats(gctx).Unwrap()
		if err != nil {
			return &FetchError{Endpoint: EndpointActivityStats, Err: err}
		}
		snap.Activity = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats.Snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}
