package charts_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/obesiscope/internal/adapters/charts"
	"github.com/okian/obesiscope/internal/domain/chartspec"
	"github.com/smartystreets/goconvey/convey"
)

// countingRenderer tracks how many handles are alive per key.
type countingRenderer struct {
	mu    sync.Mutex
	alive map[string]int
	fail  error
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{alive: map[string]int{}}
}

func (c *countingRenderer) Create(key string, spec chartspec.Spec) (charts.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	c.alive[key]++
	return &countedHandle{owner: c, key: key, spec: spec}, nil
}

func (c *countingRenderer) Alive(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive[key]
}

type countedHandle struct {
	owner     *countingRenderer
	key       string
	spec      chartspec.Spec
	destroyed bool
}

func (h *countedHandle) Spec() chartspec.Spec { return h.spec }
func (h *countedHandle) Bytes() []byte        { return []byte(h.key) }
func (h *countedHandle) ContentType() string  { return "text/plain" }
func (h *countedHandle) Destroy() {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	if !h.destroyed {
		h.destroyed = true
		h.owner.alive[h.key]--
	}
}

func specWithLabel(label string) chartspec.Spec {
	return chartspec.Spec{
		Type: chartspec.TypeBar,
		Data: chartspec.Data{Labels: []string{label}, Datasets: []chartspec.Dataset{{Label: label, Data: []float64{1}}}},
	}
}

func TestRegistryUpsert(t *testing.T) {
	convey.Convey("Given an empty registry", t, func() {
		ctx := context.Background()
		rend := newCountingRenderer()
		reg := charts.NewRegistry(rend)

		convey.Convey("When a region is upserted repeatedly", func() {
			for i := 0; i < 5; i++ {
				convey.So(reg.Upsert(ctx, chartspec.KeyGender, specWithLabel("v")), convey.ShouldBeNil)
			}

			convey.Convey("Then exactly one instance is alive for it", func() {
				convey.So(rend.Alive(chartspec.KeyGender), convey.ShouldEqual, 1)
				convey.So(reg.Live(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a region is replaced", func() {
			_ = reg.Upsert(ctx, chartspec.KeyAge, specWithLabel("old"))
			_ = reg.Upsert(ctx, chartspec.KeyAge, specWithLabel("new"))
			h, ok := reg.Get(chartspec.KeyAge)

			convey.Convey("Then the registry holds the newest spec", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(h.Spec().Data.Labels, convey.ShouldResemble, []string{"new"})
			})
		})

		convey.Convey("When several regions are filled", func() {
			for _, k := range chartspec.Keys() {
				_ = reg.Upsert(ctx, k, specWithLabel(k))
			}
			convey.So(reg.Keys(), convey.ShouldResemble, []string{"activityChart", "ageChart", "genderChart", "predictionChart"})
			convey.So(reg.Live(), convey.ShouldEqual, 4)
		})

		convey.Convey("When creation fails", func() {
			_ = reg.Upsert(ctx, chartspec.KeyActivity, specWithLabel("ok"))
			rend.fail = errors.New("boom")
			err := reg.Upsert(ctx, chartspec.KeyActivity, specWithLabel("bad"))

			convey.Convey("Then the old instance is gone and the error is wrapped", func() {
				convey.So(errors.Is(err, charts.ErrRender), convey.ShouldBeTrue)
				convey.So(rend.Alive(chartspec.KeyActivity), convey.ShouldEqual, 0)
				_, ok := reg.Get(chartspec.KeyActivity)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the key is empty", func() {
			convey.So(errors.Is(reg.Upsert(ctx, "", specWithLabel("x")), charts.ErrEmptyKey), convey.ShouldBeTrue)
		})

		convey.Convey("When the registry is closed", func() {
			_ = reg.Upsert(ctx, chartspec.KeyDistribution, specWithLabel("x"))
			convey.So(reg.Close(), convey.ShouldBeNil)

			convey.Convey("Then every instance is destroyed and upserts are refused", func() {
				convey.So(rend.Alive(chartspec.KeyDistribution), convey.ShouldEqual, 0)
				convey.So(reg.Live(), convey.ShouldEqual, 0)
				convey.So(errors.Is(reg.Upsert(ctx, chartspec.KeyDistribution, specWithLabel("y")), charts.ErrRegistryClosed), convey.ShouldBeTrue)
				convey.So(reg.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestRegistryConcurrentUpsert(t *testing.T) {
	convey.Convey("Given concurrent upserts to one region", t, func() {
		rend := newCountingRenderer()
		reg := charts.NewRegistry(rend)

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = reg.Upsert(context.Background(), chartspec.KeyDistribution, specWithLabel("c"))
			}()
		}
		wg.Wait()

		convey.So(rend.Alive(chartspec.KeyDistribution), convey.ShouldEqual, 1)
	})
}
