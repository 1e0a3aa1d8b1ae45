package utils

import "math"

// FloatToInt64 truncates a float toward zero, guarding against overflow.
func FloatToInt64(f float64) int64 {
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

// GBToBytes converts a fractional GB amount to bytes, truncated.
func GBToBytes(gb float64) int64 {
	return FloatToInt64(gb * float64(1<<30))
}
