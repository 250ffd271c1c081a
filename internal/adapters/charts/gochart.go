package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/okian/obesiscope/internal/domain/chartspec"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

const (
	defaultWidth  = 800
	defaultHeight = 400
	emptyLabel    = "Sem dados"
)

// GoChartRenderer draws chart specifications server side.
type GoChartRenderer struct {
	width, height int
	format        string
}

// RendererOption applies a configuration option to the GoChartRenderer.
type RendererOption func(*GoChartRenderer)

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) RendererOption {
	return func(g *GoChartRenderer) {
		if width > 0 && height > 0 {
			g.width, g.height = width, height
		}
	}
}

// WithFormat selects FormatSVG or FormatPNG.
func WithFormat(format string) RendererOption {
	return func(g *GoChartRenderer) {
		if format == FormatSVG || format == FormatPNG {
			g.format = format
		}
	}
}

// NewGoChartRenderer returns an SVG renderer unless configured otherwise.
func NewGoChartRenderer(opts ...RendererOption) *GoChartRenderer {
	g := &GoChartRenderer{width: defaultWidth, height: defaultHeight, format: FormatSVG}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ContentType returns the MIME type of rendered images.
func (g *GoChartRenderer) ContentType() string {
	if g.format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Create renders spec and returns its handle.
func (g *GoChartRenderer) Create(key string, spec chartspec.Spec) (Handle, error) {
	var buf bytes.Buffer
	if err := g.Render(spec, &buf); err != nil {
		return nil, err
	}
	return &imageHandle{spec: spec, data: buf.Bytes(), contentType: g.ContentType()}, nil
}

// Render writes spec as an image to w.
func (g *GoChartRenderer) Render(spec chartspec.Spec, w io.Writer) error {
	provider := chart.SVG
	if g.format == FormatPNG {
		provider = chart.PNG
	}

	if len(spec.Data.Labels) == 0 || len(spec.Data.Datasets) == 0 || !hasData(spec) {
		return g.placeholder().Render(provider, w)
	}

	switch spec.Type {
	case chartspec.TypeBar:
		if len(spec.Data.Datasets) == 1 {
			return g.bar(spec, chart.ContinuousRange{Min: 0, Max: upper(spec.Data.Datasets[0].Data)}).Render(provider, w)
		}
		sbc, ok := g.stacked(spec)
		if !ok {
			return g.placeholder().Render(provider, w)
		}
		return sbc.Render(provider, w)
	case chartspec.TypeLine:
		ch := g.line(spec)
		return ch.Render(provider, w)
	case chartspec.TypeRadar:
		// Rendered as bars over the suggested radial range.
		return g.bar(spec, radialRange(spec)).Render(provider, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, spec.Type)
	}
}

func (g *GoChartRenderer) bar(spec chartspec.Spec, yRange chart.ContinuousRange) chart.BarChart {
	ds := spec.Data.Datasets[0]
	bars := make([]chart.Value, len(spec.Data.Labels))
	for i, label := range spec.Data.Labels {
		col := colorAt(ds.BackgroundColor, i)
		bars[i] = chart.Value{
			Label: label,
			Value: valueAt(ds.Data, i),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
	}
	return chart.BarChart{
		Title:      ds.Label,
		Width:      g.width,
		Height:     g.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth(g.width, len(bars)),
		YAxis:      chart.YAxis{Range: &yRange},
		Bars:       bars,
	}
}

// stacked draws a multi-series bar chart with one stack per label.
// Labels whose stack totals zero are skipped.
func (g *GoChartRenderer) stacked(spec chartspec.Spec) (chart.StackedBarChart, bool) {
	var stacks []chart.StackedBar
	for i, label := range spec.Data.Labels {
		var values []chart.Value
		total := 0.0
		for _, ds := range spec.Data.Datasets {
			v := valueAt(ds.Data, i)
			total += v
			col := colorAt(ds.BackgroundColor, 0)
			values = append(values, chart.Value{
				Label: ds.Label,
				Value: v,
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
		}
		if total <= 0 {
			continue
		}
		stacks = append(stacks, chart.StackedBar{Name: label, Values: values})
	}
	if len(stacks) == 0 {
		return chart.StackedBarChart{}, false
	}
	return chart.StackedBarChart{
		Title:      titleOf(spec),
		Width:      g.width,
		Height:     g.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarSpacing: 20,
		Bars:       stacks,
	}, true
}

func (g *GoChartRenderer) line(spec chartspec.Spec) chart.Chart {
	n := len(spec.Data.Labels)
	xs := make([]float64, n)
	// go-chart takes the x range from the ticks, so blank edge ticks keep
	// it wide enough for a single point.
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, label := range spec.Data.Labels {
		xs[i] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) - 0.5})

	var series []chart.Series
	var primary, secondary []float64
	for _, ds := range spec.Data.Datasets {
		ys := make([]float64, n)
		for i := range ys {
			ys[i] = valueAt(ds.Data, i)
		}
		col := lineColor(ds)
		s := chart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
		}
		if ds.YAxisID == chartspec.SecondaryAxis {
			s.YAxis = chart.YAxisSecondary
			secondary = append(secondary, ys...)
		} else {
			primary = append(primary, ys...)
		}
		series = append(series, s)
	}

	ch := chart.Chart{
		Title:      titleOf(spec),
		Width:      g.width,
		Height:     g.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
		},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: upper(primary)}},
		Series: series,
	}
	if len(secondary) > 0 {
		lo, hi := spread(secondary)
		ch.YAxisSecondary = chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func (g *GoChartRenderer) placeholder() chart.BarChart {
	return chart.BarChart{
		Title:  emptyLabel,
		Width:  g.width,
		Height: g.height,
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Bars:   []chart.Value{{Label: emptyLabel, Value: 0}},
	}
}

// hasData reports whether any dataset carries a non-zero value.
func hasData(spec chartspec.Spec) bool {
	for _, ds := range spec.Data.Datasets {
		for i := range ds.Data {
			if valueAt(ds.Data, i) != 0 {
				return true
			}
		}
	}
	return false
}

func titleOf(spec chartspec.Spec) string {
	names := make([]string, 0, len(spec.Data.Datasets))
	for _, ds := range spec.Data.Datasets {
		names = append(names, ds.Label)
	}
	return strings.Join(names, " / ")
}

func valueAt(data []float64, i int) float64 {
	if i < len(data) && !math.IsNaN(data[i]) && !math.IsInf(data[i], 0) {
		return data[i]
	}
	return 0
}

// upper is the top of a zero-based axis with some headroom.
func upper(values []float64) float64 {
	hi := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	if hi <= 0 {
		return 1
	}
	return math.Ceil(hi * 1.1)
}

func spread(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1 {
		return math.Floor(lo - 1), math.Ceil(hi + 1)
	}
	return math.Floor(lo * 0.9), math.Ceil(hi * 1.1)
}

func radialRange(spec chartspec.Spec) chart.ContinuousRange {
	lo, hi := chartspec.ActivitySuggestedMin, chartspec.ActivitySuggestedMax
	if spec.Options != nil {
		if r, ok := spec.Options.Scales["r"]; ok {
			if r.SuggestedMin != nil {
				lo = *r.SuggestedMin
			}
			if r.SuggestedMax != nil {
				hi = *r.SuggestedMax
			}
		}
	}
	// Suggested bounds widen to fit the data.
	for _, v := range spec.Data.Datasets[0].Data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return chart.ContinuousRange{Min: lo, Max: hi}
}

func barWidth(width, n int) int {
	if n == 0 {
		return 0
	}
	w := (width - 80) / (n * 2)
	return max(10, min(w, 80))
}

func lineColor(ds chartspec.Dataset) drawing.Color {
	if ds.BorderColor != "" {
		return parseColor(ds.BorderColor)
	}
	return colorAt(ds.BackgroundColor, 0)
}

func colorAt(cs chartspec.Colors, i int) drawing.Color {
	if len(cs) == 0 {
		return chart.ColorBlue
	}
	return parseColor(cs[i%len(cs)])
}

// parseColor reads any CSS colour go-chart understands; unknown values
// fall back to blue.
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") && len(s) != 4 && len(s) != 7 {
		return chart.ColorBlue
	}
	c := drawing.ParseColor(s)
	if c.IsZero() {
		return chart.ColorBlue
	}
	return c
}

type imageHandle struct {
	mu          sync.RWMutex
	spec        chartspec.Spec
	data        []byte
	contentType string
	destroyed   bool
}

func (h *imageHandle) Spec() chartspec.Spec { return h.spec }

func (h *imageHandle) ContentType() string { return h.contentType }

func (h *imageHandle) Bytes() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.destroyed {
		return nil
	}
	return h.data
}

func (h *imageHandle) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.destroyed = true
	h.data = nil
}
