// Package prediction models the weight-status prediction request and result
// together with the client-side checks and display helpers of the form.
package prediction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Validation bounds.
const (
	MinAge    = 14
	MaxAge    = 100
	MinHeight = 1.4
	MaxHeight = 2.2
	MinWeight = 40.0
	MaxWeight = 200.0
	MinFAF    = 0
	MaxFAF    = 3
)

// Field names as sent on the wire.
const (
	FieldAge           = "Age"
	FieldGender        = "Gender"
	FieldHeight        = "Height"
	FieldWeight        = "Weight"
	FieldFAF           = "FAF"
	FieldSmoke         = "SMOKE"
	FieldFAVC          = "FAVC"
	FieldFamilyHistory = "family_history_with_overweight"
	FieldCAEC          = "CAEC"
	FieldCALC          = "CALC"
	FieldMTRANS        = "MTRANS"
)

// Request is the biometric record submitted for classification.
// Enumerated fields are passed through unchecked; the server owns them.
type Request struct {
	Age           int     `json:"Age"`
	Gender        string  `json:"Gender"`
	Height        float64 `json:"Height"`
	Weight        float64 `json:"Weight"`
	FAF           int     `json:"FAF"`
	Smoke         string  `json:"SMOKE"`
	FAVC          string  `json:"FAVC"`
	FamilyHistory string  `json:"family_history_with_overweight"`
	CAEC          string  `json:"CAEC"`
	CALC          string  `json:"CALC"`
	MTRANS        string  `json:"MTRANS"`
}

// Validate runs the numeric range checks in form order and returns the
// first failure as a *ValidationError.
func Validate(r Request) error {
	switch {
	case r.Age < MinAge || r.Age > MaxAge:
		return invalid(FieldAge, "invalid age range")
	case math.IsNaN(r.Height) || r.Height < MinHeight || r.Height > MaxHeight:
		return invalid(FieldHeight, "invalid height")
	case math.IsNaN(r.Weight) || r.Weight < MinWeight || r.Weight > MaxWeight:
		return invalid(FieldWeight, "invalid weight")
	case r.FAF < MinFAF || r.FAF > MaxFAF:
		return invalid(FieldFAF, "invalid activity frequency")
	}
	return nil
}

// ID is the opaque identifier of a stored prediction. The service may send
// it as a JSON string or number; it is kept in its textual form.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("prediction id: %w", err)
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("prediction id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// Result is the service answer for a successful prediction.
type Result struct {
	Prediction   string   `json:"prediction"`
	PredictionID ID       `json:"prediction_id"`
	FeaturesUsed []string `json:"features_used,omitempty"`
}

// BMI returns weight / height² rounded to one decimal.
func BMI(weight, height float64) float64 {
	if height <= 0 {
		return 0
	}
	return math.Round(weight/(height*height)*10) / 10
}

// FormatBMI renders a BMI with exactly one decimal.
func FormatBMI(bmi float64) string {
	return strconv.FormatFloat(bmi, 'f', 1, 64)
}

var activityPhrases = [...]string{
	"Nenhuma",
	"1-2 dias/semana",
	"3-4 dias/semana",
	"5+ dias/semana",
}

// ActivityPhrase maps the activity frequency to its display phrase.
// Values outside 0..3 map to "".
func ActivityPhrase(faf int) string {
	if faf < 0 || faf >= len(activityPhrases) {
		return ""
	}
	return activityPhrases[faf]
}

// GenderLabel renders the gender selection.
func GenderLabel(gender string) string {
	if gender == "Male" {
		return "Masculino"
	}
	return "Feminino"
}

// YesNoLabel renders a yes/no selection.
func YesNoLabel(v string) string {
	if v == "yes" {
		return "Sim"
	}
	return "Não"
}
