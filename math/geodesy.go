// math/geodesy.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// Project returns the position in normalized equirectangular screen
// coordinates: x in [0,1] from the antimeridian eastward and y in [0,1]
// from the north pole southward.
func (p Point2LL) Project() [2]float32 {
	return [2]float32{(p[0] + 180) / 360, (90 - p[1]) / 180}
}

// ShouldWrap reports whether the shorter way from a to b along an axis of
// the given span goes across the edge of the map rather than across its
// middle.
func ShouldWrap(a, b, span float32) bool {
	d := b - a
	return Abs(span-Abs(d)) < Abs(d)
}

const EarthRadiusKm = 6371.0088

// GreatCircleKm returns the great-circle distance in kilometers between
// two lat-long points.
func GreatCircleKm(a, b Point2LL) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	lat1, lon1 := Radians(float64(a[1])), Radians(float64(a[0]))
	lat2, lon2 := Radians(float64(b[1])), Radians(float64(b[0]))
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return EarthRadiusKm * c
}

///////////////////////////////////////////////////////////////////////////
// Ellipsoid

// Ellipsoid describes the reference surface used to lift geodetic
// coordinates into 3D. Radius is the equatorial radius and sets the
// units: elevations passed to GeodeticToCartesian must use the same unit.
type Ellipsoid struct {
	Radius     float64
	Flattening float64
}

// DefaultEllipsoid is WGS84 with the equatorial radius given in feet, so
// that airport elevations in feet can be added directly.
var DefaultEllipsoid = Ellipsoid{
	Radius:     20925646.3,
	Flattening: 1 / 298.257223563,
}

// GeodeticToCartesian converts latitude and longitude in degrees and an
// elevation above the ellipsoid into earth-centered cartesian coordinates.
func GeodeticToCartesian(lat, lon, elevation float64, e Ellipsoid) Point3D {
	phi, lambda := Radians(lat), Radians(lon)
	sinPhi, cosPhi := gomath.Sincos(phi)
	sinLambda, cosLambda := gomath.Sincos(lambda)

	e2 := e.Flattening * (2 - e.Flattening)
	// prime vertical radius of curvature
	n := e.Radius / gomath.Sqrt(1-e2*sinPhi*sinPhi)

	return Point3D{
		(n + elevation) * cosPhi * cosLambda,
		(n + elevation) * cosPhi * sinLambda,
		(n*(1-e2) + elevation) * sinPhi,
	}
}
