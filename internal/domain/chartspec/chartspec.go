// Package chartspec turns a statistics Snapshot into declarative chart
// specifications. The JSON shape follows the Chart.js configuration object
// so the same document can feed a browser chart or the server renderer.
package chartspec

import (
	"encoding/json"

	"github.com/okian/obesiscope/internal/domain/stats"
)

// Chart types.
const (
	TypeBar   = "bar"
	TypeLine  = "line"
	TypeRadar = "radar"
)

// Region keys, one per chart canvas.
const (
	KeyDistribution = "predictionChart"
	KeyGender       = "genderChart"
	KeyAge          = "ageChart"
	KeyActivity     = "activityChart"
)

// Secondary axis id used by the age chart's weight series.
const SecondaryAxis = "y1"

// Spec is a complete declarative chart.
type Spec struct {
	Type    string   `json:"type"`
	Data    Data     `json:"data"`
	Options *Options `json:"options,omitempty"`
}

// Data holds the category axis and the series.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one series.
type Dataset struct {
	Label                string    `json:"label"`
	Data                 []float64 `json:"data"`
	BackgroundColor      Colors    `json:"backgroundColor,omitempty"`
	BorderColor          string    `json:"borderColor,omitempty"`
	PointBackgroundColor string    `json:"pointBackgroundColor,omitempty"`
	Fill                 bool      `json:"fill,omitempty"`
	Tension              float64   `json:"tension,omitempty"`
	Type                 string    `json:"type,omitempty"`
	YAxisID              string    `json:"yAxisID,omitempty"`
}

// Colors is a per-point colour list. A single colour marshals as a string.
type Colors []string

// MarshalJSON implements json.Marshaler.
func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// Options carries presentation settings.
type Options struct {
	Scales map[string]Axis `json:"scales,omitempty"`
}

// Axis configures one scale. Suggested bounds are display hints only.
type Axis struct {
	BeginAtZero  bool       `json:"beginAtZero,omitempty"`
	SuggestedMin *float64   `json:"suggestedMin,omitempty"`
	SuggestedMax *float64   `json:"suggestedMax,omitempty"`
	Position     string     `json:"position,omitempty"`
	Title        *AxisTitle `json:"title,omitempty"`
}

// AxisTitle labels an axis.
type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Region pairs a canvas key with its chart.
type Region struct {
	Key  string `json:"key"`
	Spec Spec   `json:"spec"`
}

// Keys lists the chart regions in render order.
func Keys() []string {
	return []string{KeyDistribution, KeyGender, KeyAge, KeyActivity}
}

// Build computes every chart of the dashboard from one snapshot.
func Build(s stats.Snapshot) []Region {
	return []Region{
		{Key: KeyDistribution, Spec: Distribution(s)},
		{Key: KeyGender, Spec: Gender(s)},
		{Key: KeyAge, Spec: Age(s)},
		{Key: KeyActivity, Spec: Activity(s)},
	}
}

func countAxes() *Options {
	return &Options{Scales: map[string]Axis{
		"y": {BeginAtZero: true, Title: &AxisTitle{Display: true, Text: "Quantidade"}},
		"x": {Title: &AxisTitle{Display: true, Text: "Classificação"}},
	}}
}

// Distribution is the one-series bar chart of predictions per category.
func Distribution(s stats.Snapshot) Spec {
	labels := s.Distribution.Keys()
	values := s.Distribution.Values()
	data := make([]float64, len(values))
	for i, v := range values {
		data[i] = float64(v)
	}
	return Spec{
		Type: TypeBar,
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Distribuição Geral",
				Data:            data,
				BackgroundColor: Colors(Palette(len(labels))),
			}},
		},
		Options: countAxes(),
	}
}

// Gender is the two-series bar chart aligned to the distribution order.
func Gender(s stats.Snapshot) Spec {
	labels := s.Distribution.Keys()
	series := func(gender string) []float64 {
		out := make([]float64, len(labels))
		for i, k := range labels {
			out[i] = float64(s.Gender.Count(gender, k))
		}
		return out
	}
	return Spec{
		Type: TypeBar,
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{Label: "Masculino", Data: series(stats.GenderMale), BackgroundColor: Colors{ColorBlue}},
				{Label: "Feminino", Data: series(stats.GenderFemale), BackgroundColor: Colors{ColorRed}},
			},
		},
		Options: countAxes(),
	}
}

// Age is the line chart of counts per age bucket with the average weight
// overlaid on a secondary axis.
func Age(s stats.Snapshot) Spec {
	labels := make([]string, len(s.Age))
	counts := make([]float64, len(s.Age))
	weights := make([]float64, len(s.Age))
	for i, b := range s.Age {
		labels[i] = b.AgeRange
		counts[i] = float64(b.Count)
		weights[i] = b.AvgWeight
	}
	return Spec{
		Type: TypeLine,
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{
					Label:           "Distribuição por Idade",
					Data:            counts,
					BackgroundColor: Colors{"rgba(75, 192, 192, 0.1)"},
					BorderColor:     "rgba(75, 192, 192, 1)",
					Fill:            true,
					Tension:         0.3,
				},
				{
					Label:           "Peso Médio (kg)",
					Data:            weights,
					BackgroundColor: Colors{"rgba(255, 99, 132, 0.6)"},
					Type:            TypeLine,
					YAxisID:         SecondaryAxis,
				},
			},
		},
		Options: &Options{Scales: map[string]Axis{
			"y":           {BeginAtZero: true, Position: "left"},
			SecondaryAxis: {Position: "right"},
		}},
	}
}

// Radar display range for the activity chart.
const (
	ActivitySuggestedMin = 40.0
	ActivitySuggestedMax = 100.0
)

// Activity is the radar chart of average weight per activity level.
func Activity(s stats.Snapshot) Spec {
	labels := make([]string, len(s.Activity))
	weights := make([]float64, len(s.Activity))
	for i, a := range s.Activity {
		labels[i] = a.ActivityLevel
		weights[i] = a.AvgWeight
	}
	lo, hi := ActivitySuggestedMin, ActivitySuggestedMax
	return Spec{
		Type: TypeRadar,
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:                "Média de Peso (kg)",
				Data:                 weights,
				BackgroundColor:      Colors{"rgba(255, 206, 86, 0.2)"},
				BorderColor:          "rgba(255, 206, 86, 1)",
				PointBackgroundColor: "rgba(255, 206, 86, 1)",
			}},
		},
		Options: &Options{Scales: map[string]Axis{
			"r": {BeginAtZero: true, SuggestedMin: &lo, SuggestedMax: &hi},
		}},
	}
}
