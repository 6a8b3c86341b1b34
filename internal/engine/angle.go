// Package engine implements the wind condition decision engine: angular
// math, direction assessment, data-freshness arbitration, dawn patrol
// time-windowing, and the five-factor probability model.
//
// Every function in this package is pure and synchronous. "Now" is always an
// explicit parameter, never read from the system clock, so each computation
// is deterministic and replayable in tests. Concurrent callers need no
// coordination; there is no shared state to race on.
package engine

import (
	"math"

	"dawnpatrol/internal/types"
)

// Normalize reduces any finite angle into the canonical [0,360) range.
// Non-finite input (NaN, +-Inf) is the caller's responsibility; use
// NormalizeChecked at trust boundaries.
func Normalize(deg float64) float64 {
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	return n
}

// NormalizeChecked is Normalize with finite-input validation. It returns a
// validation_invalid_angle AppError for NaN or infinite input.
func NormalizeChecked(deg float64) (float64, error) {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidAngle,
			"angle must be a finite number",
			nil,
		)
	}
	return Normalize(deg), nil
}

// AngularDistance returns the shortest circular distance between two angles,
// in [0,180]. It is symmetric: AngularDistance(a, b) == AngularDistance(b, a).
func AngularDistance(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// InRange reports whether angle lies inside the inclusive range [min, max]
// on the circle. When min > max the range wraps through 0 (e.g. min=350,
// max=30 covers 350-360 and 0-30). Boundary values are always included.
func InRange(angle, min, max float64) bool {
	a := Normalize(angle)
	lo := Normalize(min)
	hi := Normalize(max)
	if lo <= hi {
		return a >= lo && a <= hi
	}
	return a >= lo || a <= hi
}

// finite reports whether f is an ordinary real number.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
