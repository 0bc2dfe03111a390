// Package money holds the rounding rules for amounts stored as NUMERIC(12,2).
package money

import "math"

// MaxAmount is the largest value a NUMERIC(12,2) column holds.
const MaxAmount = 9999999999.99

// Round rounds v to whole cents, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Fits reports whether v can be stored without overflowing the column.
func Fits(v float64) bool {
	return v >= 0 && Round(v) <= MaxAmount
}

// Sum adds amounts and rounds the result to cents.
func Sum(amounts ...float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return Round(total)
}
