// math/core.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees[F constraints.Float](r F) F {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians[F constraints.Float](d F) F {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Mod returns a mod b, always in [0,b) for positive b.
func Mod(a, b float32) float32 {
	m := float32(gomath.Mod(float64(a), float64(b)))
	if m < 0 {
		m += b
	}
	return m
}
