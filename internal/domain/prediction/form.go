package prediction

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// ParseForm builds a Request from raw form values keyed by wire field name.
// Numeric fields are read from their leading numeric prefix, so "25 anos"
// yields 25. A numeric field with no usable prefix fails validation for
// that field.
func ParseForm(values map[string]string) (Request, error) {
	r := Request{
		Gender:        values[FieldGender],
		Smoke:         values[FieldSmoke],
		FAVC:          values[FieldFAVC],
		FamilyHistory: values[FieldFamilyHistory],
		CAEC:          values[FieldCAEC],
		CALC:          values[FieldCALC],
		MTRANS:        values[FieldMTRANS],
	}

	var ok bool
	if r.Age, ok = parseIntPrefix(values[FieldAge]); !ok {
		return r, invalid(FieldAge, "invalid age range")
	}
	r.Height = parseFloatPrefix(values[FieldHeight])
	r.Weight = parseFloatPrefix(values[FieldWeight])
	if r.FAF, ok = parseIntPrefix(values[FieldFAF]); !ok {
		r.FAF = -1
	}
	return r, nil
}

func parseIntPrefix(s string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloatPrefix(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
