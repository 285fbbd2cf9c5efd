// graph/airports.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package graph

import (
	"github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/math"
)

// BuildFromAirports projects the airports onto the ellipsoid e and builds
// their graph. The projected points are returned along with the graph;
// they are indexed the same as airports.
func BuildFromAirports(airports []aviation.Airport, e math.Ellipsoid, opts Options) (Graph, []math.Point3D, error) {
	points := aviation.Positions3D(airports, e)
	g, err := Build(points, opts)
	if err != nil {
		return nil, nil, err
	}
	return g, points, nil
}
