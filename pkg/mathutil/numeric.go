// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/metria/innovation-accounting/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for display and logical comparisons, never inside the engine.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundHalfUp rounds to the nearest integer with halves rounded toward
// positive infinity, so -2.5 becomes -2.
func RoundHalfUp(val float64) float64 {
	return math.Floor(val + 0.5)
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Finite returns val, or 0 when val is NaN or infinite.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// NonNegative clamps val to zero from below after coercing it with Finite.
func NonNegative(val float64) float64 {
	val = Finite(val)
	if val < 0 {
		return 0
	}
	return val
}

// Clamp bounds val to [lo, hi]. NaN becomes lo.
func Clamp(val, lo, hi float64) float64 {
	if math.IsNaN(val) || val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// SafeDivide returns numerator/denominator, or 0 when the denominator is
// not strictly positive or the quotient is not finite.
func SafeDivide(numerator, denominator float64) float64 {
	if !(denominator > 0) {
		return 0
	}
	return Finite(numerator / denominator)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}
