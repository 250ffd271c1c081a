// Package stats models the aggregate statistics documents served by the
// prediction service and the per-cycle Snapshot built from them.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Genders used by the segmented distribution.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// ErrMalformed is returned when a statistics document has the wrong shape.
var ErrMalformed = errors.New("malformed statistics document")

// OrderedCounts is a category -> count mapping that keeps document order.
type OrderedCounts struct {
	keys   []string
	counts map[string]int
}

// NewOrderedCounts builds counts from parallel key and value slices.
func NewOrderedCounts(keys []string, values []int) OrderedCounts {
	oc := OrderedCounts{counts: make(map[string]int, len(keys))}
	for i, k := range keys {
		v := 0
		if i < len(values) {
			v = values[i]
		}
		oc.set(k, v)
	}
	return oc
}

func (oc *OrderedCounts) set(key string, v int) {
	if oc.counts == nil {
		oc.counts = make(map[string]int)
	}
	if _, ok := oc.counts[key]; !ok {
		oc.keys = append(oc.keys, key)
	}
	oc.counts[key] = v
}

// Keys returns the categories in document order.
func (oc OrderedCounts) Keys() []string {
	out := make([]string, len(oc.keys))
	copy(out, oc.keys)
	return out
}

// Values returns the counts aligned with Keys.
func (oc OrderedCounts) Values() []int {
	out := make([]int, len(oc.keys))
	for i, k := range oc.keys {
		out[i] = oc.counts[k]
	}
	return out
}

// Get returns the count for key, 0 when absent.
func (oc OrderedCounts) Get(key string) int {
	return oc.counts[key]
}

// Len reports the number of categories.
func (oc OrderedCounts) Len() int { return len(oc.keys) }

// ParseOrderedCounts reads a JSON object of name -> number keeping key order.
func ParseOrderedCounts(doc []byte) (OrderedCounts, error) {
	if !gjson.ValidBytes(doc) {
		return OrderedCounts{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return OrderedCounts{}, fmt.Errorf("%w: expected object", ErrMalformed)
	}
	return countsFrom(root)
}

func countsFrom(obj gjson.Result) (OrderedCounts, error) {
	oc := OrderedCounts{counts: make(map[string]int)}
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("%w: count for %q is not a number", ErrMalformed, key.String())
			return false
		}
		oc.set(key.String(), int(value.Int()))
		return true
	})
	if err != nil {
		return OrderedCounts{}, err
	}
	return oc, nil
}

// GenderStats maps gender -> category counts.
type GenderStats map[string]OrderedCounts

// Count returns the count for gender and category, 0 when either is absent.
func (g GenderStats) Count(gender, category string) int {
	return g[gender].Get(category)
}

// ParseGenderStats reads the gender-segmented distribution document.
func ParseGenderStats(doc []byte) (GenderStats, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object", ErrMalformed)
	}

	out := make(GenderStats)
	var err error
	root.ForEach(func(gender, inner gjson.Result) bool {
		if !inner.IsObject() {
			err = fmt.Errorf("%w: breakdown for %q is not an object", ErrMalformed, gender.String())
			return false
		}
		var oc OrderedCounts
		if oc, err = countsFrom(inner); err != nil {
			return false
		}
		out[gender.String()] = oc
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Total is the total predictions document.
type Total struct {
	TotalPredictions *int `json:"total_predictions"`
}

// AgeBucket is one entry of the age-bucketed summary.
type AgeBucket struct {
	AgeRange    string   `json:"age_range"`
	Count       int      `json:"count"`
	AvgWeight   float64  `json:"avg_weight"`
	Predictions []string `json:"predictions,omitempty"`
}

// ActivityLevel is one entry of the activity-level summary.
type ActivityLevel struct {
	ActivityLevel string  `json:"activity_level"`
	AvgWeight     float64 `json:"avg_weight"`
	Count         int     `json:"count"`
}

// HistoryEntry is one stored prediction as listed by GET /predictions.
type HistoryEntry struct {
	ID             string  `json:"_id"`
	Prediction     string  `json:"prediction"`
	PredictionDate string  `json:"prediction_date"`
	Age            float64 `json:"Age"`
	Gender         string  `json:"Gender"`
	Height         float64 `json:"Height"`
	Weight         float64 `json:"Weight"`
	FAF            float64 `json:"FAF"`
}

// Snapshot bundles the five documents fetched for one refresh cycle.
type Snapshot struct {
	Total        int
	Distribution OrderedCounts
	Gender       GenderStats
	Age          []AgeBucket
	Activity     []ActivityLevel
	FetchedAt    time.Time
}
