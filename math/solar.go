// math/solar.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"time"
)

// SubsolarPoint returns the point on the Earth where the sun is directly
// overhead at time t. It ignores the equation of time, which is good for
// about a degree and plenty for shading the night side of a map.
func SubsolarPoint(t time.Time) Point2LL {
	t = t.UTC()
	doy := float64(t.YearDay())
	decl := -23.44 * gomath.Cos(2*gomath.Pi/365*(doy+10))

	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	lon := -15 * (hours - 12)
	if lon < -180 {
		lon += 360
	}
	return Point2LL{float32(lon), float32(decl)}
}

// IsNight reports whether the sun is below the horizon at p at time t.
func IsNight(p Point2LL, t time.Time) bool {
	s := SubsolarPoint(t)
	lat, lon := Radians(float64(p[1])), Radians(float64(p[0]))
	slat, slon := Radians(float64(s[1])), Radians(float64(s[0]))
	cosZenith := gomath.Sin(lat)*gomath.Sin(slat) + gomath.Cos(lat)*gomath.Cos(slat)*gomath.Cos(lon-slon)
	return cosZenith < 0
}
