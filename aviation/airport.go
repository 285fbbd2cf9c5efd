// aviation/airport.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"

	"github.com/drakula-game/drakula/math"
	"github.com/drakula-game/drakula/util"
)

// Airport is a single airport record as distributed by ourairports.com.
// Records are immutable once loaded.
type Airport struct {
	ID               int
	Ident            string
	Type             string
	Name             string
	Latitude         float64
	Longitude        float64
	Elevation        int // feet
	Continent        string
	ISOCountry       string
	ISORegion        string
	Municipality     string
	ScheduledService bool
	GPSCode          string
	IATACode         string
	LocalCode        string
	HomeLink         string
}

// Continent codes used by ourairports.
var Continents = []string{"AF", "AN", "AS", "EU", "NA", "OC", "SA"}

func (ap Airport) Location() math.Point2LL {
	return math.Point2LL{float32(ap.Longitude), float32(ap.Latitude)}
}

// Position3D returns the airport's location in Earth-centered Cartesian
// coordinates on the ellipsoid e.
func (ap Airport) Position3D(e math.Ellipsoid) math.Point3D {
	return math.GeodeticToCartesian(ap.Latitude, ap.Longitude, float64(ap.Elevation), e)
}

func (ap Airport) String() string {
	return ap.Ident + " (" + ap.Name + ")"
}

// Validate checks the record's own fields, logging any problems to e.
func (ap Airport) Validate(e *util.ErrorLogger) {
	if ap.ID <= 0 {
		e.ErrorString("id %d must be positive", ap.ID)
	}
	if strings.TrimSpace(ap.Ident) == "" {
		e.ErrorString("empty ident")
	}
	if ap.Latitude < -90 || ap.Latitude > 90 {
		e.ErrorString("latitude %f outside [-90, 90]", ap.Latitude)
	}
	if ap.Longitude < -180 || ap.Longitude > 180 {
		e.ErrorString("longitude %f outside [-180, 180]", ap.Longitude)
	}
	if ap.Elevation < 0 {
		e.ErrorString("elevation %d ft is negative", ap.Elevation)
	}
}

// ValidateAirports checks every record in the list along with the
// requirement that idents be unique (case-insensitively, since the player
// types them). All problems are reported together in the returned error,
// which wraps ErrInvalidAirports.
func ValidateAirports(airports []Airport) error {
	var e util.ErrorLogger

	seen := make(map[string]int)
	for i, ap := range airports {
		e.Push(fmt.Sprintf("airport %d %q", i, ap.Ident))
		ap.Validate(&e)

		key := strings.ToUpper(strings.TrimSpace(ap.Ident))
		if prev, ok := seen[key]; ok && key != "" {
			e.ErrorString("duplicate ident; also used by airport %d", prev)
		} else {
			seen[key] = i
		}
		e.Pop()
	}

	if e.HaveErrors() {
		return fmt.Errorf("%w:\n%s", ErrInvalidAirports, e.String())
	}
	return nil
}

// Positions3D returns the Cartesian position of each airport, in order.
func Positions3D(airports []Airport, e math.Ellipsoid) []math.Point3D {
	return util.MapSlice(airports, func(ap Airport) math.Point3D { return ap.Position3D(e) })
}
