// sim/dracula.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
)

// RandomSource is the randomness the game needs; *rand.Rand provides it.
type RandomSource interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
	// SampleIndex returns an index into weights chosen with probability
	// proportional to its weight, or -1 if no weight is positive.
	SampleIndex(weights []float64) int
}

// Move is a possible move for Dracula.
type Move struct {
	Probability float64
	Target      int
}

// Edge identifies an undirected connection between two airports; A <= B.
type Edge struct {
	A, B int
}

func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Brain decides where Dracula goes. It only remembers the connections he
// has used, which matters if AvoidBacktrack is set.
type Brain struct {
	visited map[Edge]struct{}
}

func NewBrain() *Brain {
	return &Brain{visited: make(map[Edge]struct{})}
}

// ListMoves returns a probability distribution over the airports Dracula
// can move to from loc. He's reluctant to go to destroyed airports and
// drawn to trapped ones. ErrNoMoves is returned if loc has no outgoing
// connections.
func (b *Brain) ListMoves(s *State, loc int) ([]Move, error) {
	neighbors := s.graph[loc]
	if len(neighbors) == 0 {
		return nil, fmt.Errorf("%s: %w", s.airports[loc].Ident, ErrNoMoves)
	}

	candidates := neighbors
	if s.cfg.AvoidBacktrack {
		var fresh []int
		for _, n := range neighbors {
			if _, ok := b.visited[MakeEdge(loc, n)]; !ok {
				fresh = append(fresh, n)
			}
		}
		// At a dead end he has to go back the way he came.
		if len(fresh) > 0 {
			candidates = fresh
		}
	}

	moves := make([]Move, len(candidates))
	var sum float64
	for i, n := range candidates {
		w := 1.0
		switch s.states[n].Status {
		case Destroyed:
			w *= s.cfg.DestroyedPenalty
		case Trapped:
			w *= s.cfg.TrappedBonus
		}
		moves[i] = Move{Probability: w, Target: n}
		sum += w
	}
	for i := range moves {
		moves[i].Probability /= sum
	}

	return moves, nil
}

// Choose samples Dracula's next airport from ListMoves.
func (b *Brain) Choose(s *State, loc int, r RandomSource) (int, error) {
	moves, err := b.ListMoves(s, loc)
	if err != nil {
		return 0, err
	}

	weights := make([]float64, len(moves))
	for i, m := range moves {
		weights[i] = m.Probability
	}
	idx := r.SampleIndex(weights)
	if idx < 0 || idx >= len(moves) {
		return 0, fmt.Errorf("%s: sampled %d of %d: %w", s.airports[loc].Ident, idx, len(moves), ErrNoMoves)
	}

	target := moves[idx].Target
	if s.cfg.AvoidBacktrack {
		b.visited[MakeEdge(loc, target)] = struct{}{}
	}
	s.lg.Debug("dracula chose", slog.String("from", s.airports[loc].Ident),
		slog.String("to", s.airports[target].Ident), slog.Float64("p", moves[idx].Probability))

	return target, nil
}

// Visited reports whether Dracula has used the given connection.
func (b *Brain) Visited(e Edge) bool {
	_, ok := b.visited[e]
	return ok
}
