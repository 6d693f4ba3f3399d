package project

import "math"

// Two distinct rounding policies are in play and they are not interchangeable:
// overall completion uses half-up rounding, the expected daily pace uses
// ceiling division (never under-promise required output). Everything else is
// plain rounding at two decimals.

// RoundHalfUp rounds to the nearest integer with halves going away from zero,
// not to-even.
func RoundHalfUp(v float64) int {
	if v < 0 {
		return int(math.Ceil(v - 0.5))
	}
	return int(math.Floor(v + 0.5))
}

// CeilDiv divides quantity by days and rounds up.
func CeilDiv(quantity float64, days int) float64 {
	return math.Ceil(quantity / float64(days))
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
