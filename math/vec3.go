// math/vec3.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// point 3d

// Point3D is a point (or vector) in 3D cartesian space. Unlike most of
// the 2D code, it's double precision: the hull construction computes
// orientation tests on earth-sized coordinates, where float32 runs out
// of bits.
type Point3D [3]float64

// Names are brief in order to avoid clutter when they're used.

// a+b
func Add3(a, b Point3D) Point3D {
	return Point3D{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// a-b
func Sub3(a, b Point3D) Point3D {
	return Point3D{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// a*s
func Scale3(a Point3D, s float64) Point3D {
	return Point3D{s * a[0], s * a[1], s * a[2]}
}

func Dot3(a, b Point3D) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func Cross3(a, b Point3D) Point3D {
	return Point3D{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func LengthSq3(v Point3D) float64 {
	return Dot3(v, v)
}

func Length3(v Point3D) float64 {
	return gomath.Sqrt(LengthSq3(v))
}

// DistanceSq3 returns the squared distance between two points.
func DistanceSq3(a, b Point3D) float64 {
	return LengthSq3(Sub3(a, b))
}

// Normalizes the given vector; the zero vector is returned unchanged.
func Normalize3(v Point3D) Point3D {
	l := Length3(v)
	if l == 0 {
		return v
	}
	return Scale3(v, 1/l)
}
