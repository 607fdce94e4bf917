package domain

import (
	"strconv"
	"strings"
)

// ValueKind classifies how an indicator value was produced.
type ValueKind string

const (
	// KindActual marks a value observed in the source data.
	KindActual ValueKind = "ACT"
	// KindEstimate marks a value the publisher flagged as estimated.
	KindEstimate ValueKind = "EST"
	// KindForecast marks a value projected beyond the published range.
	KindForecast ValueKind = "FOR"
	// KindUnknown marks a value whose provenance could not be determined.
	KindUnknown ValueKind = "?"
	// KindMissing marks an absent observation.
	KindMissing ValueKind = "–"
)

// MissingToken is the sentinel the publisher uses for absent observations.
// It doubles as the serialized form of a missing value.
const MissingToken = "–"

// ClassifiedValue is a single yearly observation paired with its
// provenance. Missing observations carry no numeric payload.
type ClassifiedValue struct {
	Kind     ValueKind `json:"kind"`
	Value    float64   `json:"value"`
	HasValue bool      `json:"has_value"`
}

// Actual returns an observed value rounded to one decimal place.
func Actual(v float64) ClassifiedValue {
	return ClassifiedValue{Kind: KindActual, Value: round1(v), HasValue: true}
}

// Estimate returns an estimated value rounded to one decimal place.
func Estimate(v float64) ClassifiedValue {
	return ClassifiedValue{Kind: KindEstimate, Value: round1(v), HasValue: true}
}

// Forecast returns a forecast placeholder with no numeric payload.
func Forecast() ClassifiedValue {
	return ClassifiedValue{Kind: KindForecast}
}

// Missing returns the missing-observation sentinel.
func Missing() ClassifiedValue {
	return ClassifiedValue{Kind: KindMissing}
}

// String renders the value in pipe-delimited form, e.g. "ACT|1.5".
// Kinds without a numeric payload render as the bare kind token.
func (cv ClassifiedValue) String() string {
	if !cv.HasValue {
		return string(cv.Kind)
	}
	return string(cv.Kind) + "|" + strconv.FormatFloat(cv.Value, 'f', 1, 64)
}

// ParseClassifiedValue parses the pipe-delimited form produced by String.
func ParseClassifiedValue(s string) (ClassifiedValue, bool) {
	kind, num, ok := strings.Cut(s, "|")
	switch ValueKind(kind) {
	case KindActual, KindEstimate, KindForecast, KindUnknown, KindMissing:
	default:
		return ClassifiedValue{}, false
	}
	cv := ClassifiedValue{Kind: ValueKind(kind)}
	if !ok {
		return cv, true
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return ClassifiedValue{}, false
	}
	cv.Value = v
	cv.HasValue = true
	return cv, true
}

func round1(v float64) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return f
}
