// sim/snapshot.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/brunoga/deep"
	"github.com/goforj/godump"

	"github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/graph"
)

// NeighborInfo describes an airport connected to the player's.
type NeighborInfo struct {
	Index      int
	Ident      string
	Name       string
	DistanceKm float64
	Status     AirportStatus
}

// Snapshot is everything the front end needs to draw the game. It shares
// no memory with the Game.
type Snapshot struct {
	Turn   int
	Status Status

	Airports []aviation.Airport
	States   []AirportState
	Graph    graph.Graph

	PlayerLocation int
	Traps          int
	Input          string
	Neighbors      []NeighborInfo

	// LastDestroyed is the airport Dracula left on the last turn, or
	// NotFound.
	LastDestroyed     int
	DestroyedFraction float64
	ProximityWarning  bool

	// Dracula's whereabouts; the front end only shows these in debug
	// mode or once the game is over.
	DraculaLocation int
	DraculaTrail    []int
}

func (g *Game) Snapshot() Snapshot {
	s := g.state

	var neighbors []NeighborInfo
	for _, n := range s.graph[g.player.Location] {
		neighbors = append(neighbors, NeighborInfo{
			Index:      n,
			Ident:      s.airports[n].Ident,
			Name:       s.airports[n].Name,
			DistanceKm: s.DistanceKm(g.player.Location, n),
			Status:     s.states[n].Status,
		})
	}

	return deep.MustCopy(Snapshot{
		Turn:              g.turn,
		Status:            g.status,
		Airports:          s.airports,
		States:            s.states,
		Graph:             s.graph,
		PlayerLocation:    g.player.Location,
		Traps:             g.player.Traps,
		Input:             g.player.Input.String(),
		Neighbors:         neighbors,
		LastDestroyed:     g.lastDestroyed,
		DestroyedFraction: s.DestroyedFraction(),
		ProximityWarning:  !g.status.GameOver() && s.IsDraculaAdjacentToTrap(),
		DraculaLocation:   s.dracula,
		DraculaTrail:      s.trail,
	})
}

// Dump returns a human-readable rendering of the game's snapshot for the
// debug overlay.
func (g *Game) Dump() string {
	return godump.DumpStr(g.Snapshot())
}

// Neighbor returns information about the given airport if it is
// connected to the player's.
func (s Snapshot) Neighbor(idx int) (NeighborInfo, bool) {
	for _, n := range s.Neighbors {
		if n.Index == idx {
			return n, true
		}
	}
	return NeighborInfo{}, false
}
