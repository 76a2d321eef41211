package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

// Floor returns the largest integer value less than or equal to f,
// as a float32 (mirrors the C math.h helpers the rest of this package wraps).
func Floor(f float32) float32 {
	return float32(stdmath.Floor(float64(f)))
}

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}
