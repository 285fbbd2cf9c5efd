// sim/state.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/graph"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/math"
	"github.com/drakula-game/drakula/util"

	lru "github.com/hashicorp/golang-lru/v2"
)

type AirportStatus int

const (
	Available AirportStatus = iota
	Destroyed
	Trapped
)

func (s AirportStatus) String() string {
	switch s {
	case Available:
		return "available"
	case Destroyed:
		return "destroyed"
	case Trapped:
		return "trapped"
	default:
		return fmt.Sprintf("AirportStatus(%d)", int(s))
	}
}

type AirportState struct {
	Status    AirportStatus
	TrapTimer int
}

// NotFound is returned by IndexByCode for unknown codes.
const NotFound = -1

const distanceCacheSize = 4096

// State is the world: the airports, the graph connecting them, the status
// of each airport, and where Dracula is and has been.
type State struct {
	airports []aviation.Airport
	points   []math.Point3D
	graph    graph.Graph
	states   []AirportState

	playerStart int
	dracula     int
	trail       []int
	// destroyed is kept in step with states so that DestroyedFraction
	// doesn't need to scan.
	destroyed map[int]struct{}

	byCode    map[string]int
	distances *lru.Cache[Edge, float64]

	cfg Config
	lg  *log.Logger
}

// NewState builds the graph for the given airports and places Dracula at
// a random airport at least cfg.MinSeparation hops from playerStart. If
// playerStart is NotFound, the player's airport is chosen at random among
// those that have a valid Dracula start.
func NewState(airports []aviation.Airport, playerStart int, cfg Config, r RandomSource, lg *log.Logger) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := aviation.ValidateAirports(airports); err != nil {
		return nil, err
	}
	if playerStart != NotFound && (playerStart < 0 || playerStart >= len(airports)) {
		return nil, fmt.Errorf("%d: %w", playerStart, ErrInvalidPlayerStart)
	}

	g, points, err := graph.BuildFromAirports(airports, cfg.Ellipsoid, cfg.GraphOptions())
	if errors.Is(err, math.ErrDegenerateInput) {
		return nil, fmt.Errorf("%w: %w", ErrDegenerateInput, err)
	} else if err != nil {
		return nil, err
	}

	s := newState(airports, points, g, cfg, lg)

	var dracula int
	if playerStart == NotFound {
		playerStart, dracula, err = s.pickStarts(r)
	} else {
		dracula, err = s.pickDraculaStart(playerStart, r)
	}
	if err != nil {
		return nil, err
	}
	s.playerStart = playerStart
	s.dracula = dracula
	s.trail = []int{dracula}

	lg.Info("world created", slog.Int("airports", len(airports)), slog.Int("edges", g.EdgeCount()),
		slog.Any("config", cfg))
	lg.Debug("dracula placed", slog.String("airport", airports[dracula].Ident))

	return s, nil
}

func newState(airports []aviation.Airport, points []math.Point3D, g graph.Graph, cfg Config, lg *log.Logger) *State {
	s := &State{
		airports:  slices.Clone(airports),
		points:    points,
		graph:     g,
		states:    make([]AirportState, len(airports)),
		destroyed: make(map[int]struct{}),
		byCode:    make(map[string]int),
		cfg:       cfg,
		lg:        lg,
	}

	for i, ap := range airports {
		s.byCode[strings.ToUpper(strings.TrimSpace(ap.Ident))] = i
	}

	// The size is a constant so this can't fail.
	s.distances, _ = lru.New[Edge, float64](distanceCacheSize)

	if iso := g.Isolated(); len(iso) > 0 {
		lg.Warn("airports with no connections", slog.Any("airports",
			util.MapSlice(iso, func(i int) string { return airports[i].Ident })))
	}

	if !g.IsSymmetric() {
		lg.Debug("airport graph is asymmetric after pruning")
	}

	return s
}

// pickDraculaStart chooses uniformly among the airports reachable from
// the player's start that are at least MinSeparation hops away.
func (s *State) pickDraculaStart(playerStart int, r RandomSource) (int, error) {
	hops := s.graph.HopDistances(playerStart, 0)

	var candidates []int
	for i, h := range hops {
		if h != graph.Unreached && h >= s.cfg.MinSeparation {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%s: min separation %d: %w", s.airports[playerStart].Ident,
			s.cfg.MinSeparation, ErrNoValidAdversaryStart)
	}
	return candidates[r.Intn(len(candidates))], nil
}

// pickStarts chooses the player's airport uniformly among the airports
// that have a valid Dracula start and then places Dracula. Airports with
// no connections are never chosen.
func (s *State) pickStarts(r RandomSource) (player, dracula int, err error) {
	var order []int
	for i, n := range s.graph {
		if len(n) > 0 {
			order = append(order, i)
		}
	}

	// Try candidates in random order until one admits Dracula.
	for len(order) > 0 {
		i := r.Intn(len(order))
		player = order[i]
		order[i] = order[len(order)-1]
		order = order[:len(order)-1]

		if dracula, err = s.pickDraculaStart(player, r); err == nil {
			return player, dracula, nil
		}
	}
	return 0, 0, fmt.Errorf("no player start with min separation %d: %w", s.cfg.MinSeparation,
		ErrNoValidAdversaryStart)
}

func (s *State) valid(i int) bool {
	return i >= 0 && i < len(s.states)
}

func (s *State) Config() Config {
	return s.cfg
}

func (s *State) NumAirports() int {
	return len(s.airports)
}

func (s *State) Airport(i int) aviation.Airport {
	return s.airports[i]
}

func (s *State) Airports() []aviation.Airport {
	return s.airports
}

func (s *State) Points() []math.Point3D {
	return s.points
}

func (s *State) Graph() graph.Graph {
	return s.graph
}

func (s *State) Status(i int) AirportState {
	return s.states[i]
}

func (s *State) States() []AirportState {
	return slices.Clone(s.states)
}

// PlayerStart returns the airport the player started at.
func (s *State) PlayerStart() int {
	return s.playerStart
}

func (s *State) DraculaLocation() int {
	return s.dracula
}

// Trail returns every airport Dracula has occupied, in order, ending with
// his current location.
func (s *State) Trail() []int {
	return slices.Clone(s.trail)
}

// IndexByCode returns the index of the airport with the given ident,
// ignoring case and surrounding whitespace, or NotFound.
func (s *State) IndexByCode(code string) int {
	if i, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return i
	}
	return NotFound
}

// TrapLocation traps an available airport; it does nothing for trapped or
// destroyed ones.
func (s *State) TrapLocation(i int) {
	if s.valid(i) && s.states[i].Status == Available {
		s.states[i].Status = Trapped
	}
}

// TickTrapTimers advances every trap by one turn and returns the airports
// whose traps expired. It must be called exactly once per completed turn.
func (s *State) TickTrapTimers() []int {
	var expired []int
	for i := range s.states {
		st := &s.states[i]
		if st.Status != Trapped {
			continue
		}
		st.TrapTimer++
		if st.TrapTimer > s.cfg.TrapDuration {
			st.Status = Available
			st.TrapTimer = 0
			expired = append(expired, i)
		}
	}
	return expired
}

// MarkDestroyed destroys the airport, along with any trap it had. It is
// terminal.
func (s *State) MarkDestroyed(i int) {
	if !s.valid(i) {
		return
	}
	s.states[i] = AirportState{Status: Destroyed}
	s.destroyed[i] = struct{}{}
}

// MoveDracula relocates Dracula to the given airport, destroying the one
// he leaves. The previous location is returned.
func (s *State) MoveDracula(to int) int {
	prev := s.dracula
	s.dracula = to
	s.trail = append(s.trail, to)
	if prev != to {
		s.MarkDestroyed(prev)
	}
	return prev
}

func (s *State) DestroyedCount() int {
	return len(s.destroyed)
}

func (s *State) DestroyedFraction() float64 {
	if len(s.states) == 0 {
		return 0
	}
	return float64(len(s.destroyed)) / float64(len(s.states))
}

func (s *State) IsDraculaOnTrap() bool {
	return s.states[s.dracula].Status == Trapped
}

// IsDraculaAdjacentToTrap reports whether any airport Dracula can move to
// is trapped.
func (s *State) IsDraculaAdjacentToTrap() bool {
	return slices.ContainsFunc(s.graph[s.dracula], func(n int) bool {
		return s.states[n].Status == Trapped
	})
}

// DistanceKm returns the great-circle distance between two airports.
func (s *State) DistanceKm(a, b int) float64 {
	e := MakeEdge(a, b)
	if d, ok := s.distances.Get(e); ok {
		return d
	}
	d := math.GreatCircleKm(s.airports[a].Location(), s.airports[b].Location())
	s.distances.Add(e, d)
	return d
}

func (s *State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("airports", len(s.airports)),
		slog.Int("destroyed", len(s.destroyed)),
		slog.String("dracula", s.airports[s.dracula].Ident),
		slog.Int("trail_length", len(s.trail)))
}
