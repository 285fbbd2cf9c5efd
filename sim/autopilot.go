// sim/autopilot.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"slices"

	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/util"
)

type CommandKind int

const (
	MoveCommand CommandKind = iota
	TrapCommand
	PassCommand
)

func (k CommandKind) String() string {
	return []string{"move", "trap", "pass"}[k]
}

type Command struct {
	Kind CommandKind
	Code string // MoveCommand only
}

func (c Command) String() string {
	if c.Kind == MoveCommand {
		return "move " + c.Code
	}
	return c.Kind.String()
}

// Execute runs the given command.
func (g *Game) Execute(c Command) (TurnResult, error) {
	switch c.Kind {
	case MoveCommand:
		return g.SubmitMove(c.Code)
	case TrapCommand:
		return g.SubmitTrap()
	case PassCommand:
		return g.SubmitPass()
	default:
		return g.reject(fmt.Errorf("command %d: %w", c.Kind, ErrMalformedInput))
	}
}

// Autopilot plays the game using only what the player can see: the
// status of each airport, the airport Dracula last destroyed, and the
// proximity warning. It is used for batch simulation and testing.
type Autopilot struct {
	r *rand.Rand
}

func NewAutopilot(r *rand.Rand) *Autopilot {
	return &Autopilot{r: r}
}

// Next returns the command to play given the current snapshot.
func (a *Autopilot) Next(s Snapshot) Command {
	loc := s.PlayerLocation

	enterable := func(i int) bool { return s.States[i].Status != Destroyed }

	// Dracula is next to the airport he just destroyed.
	var goals []int
	near := false
	if d := s.LastDestroyed; d != NotFound {
		goals = util.FilterSlice(s.Graph[d], enterable)
		near = slices.Contains(s.Graph[d], loc) || slices.Contains(s.Graph[loc], d)
	}

	// Trap when he's close: either he's next to one of our traps already
	// or we're in his neighborhood.
	if s.Traps > 0 && s.States[loc].Status == Available && (s.ProximityWarning || near) {
		return Command{Kind: TrapCommand}
	}

	if !slices.ContainsFunc(s.Graph[loc], enterable) {
		return Command{Kind: PassCommand}
	}

	if path := s.Graph.PathToAny(loc, goals, enterable); len(path) > 0 {
		return Command{Kind: MoveCommand, Code: s.Airports[path[0]].Ident}
	}

	next := s.Graph[loc][rand.SampleFiltered(a.r, s.Graph[loc], enterable)]
	return Command{Kind: MoveCommand, Code: s.Airports[next].Ident}
}

// Play runs the game with the autopilot until it's over or maxCommands
// commands have been issued. The final status is returned along with any
// error that stopped the game.
func Play(g *Game, a *Autopilot, maxCommands int) (Status, error) {
	for range maxCommands {
		if g.Status().GameOver() {
			break
		}

		cmd := a.Next(g.Snapshot())
		if _, err := g.Execute(cmd); err != nil {
			if g.Status() == Aborted {
				return Aborted, err
			}
			// The autopilot only issues legal commands, but the pass is
			// always available.
			if _, err := g.SubmitPass(); err != nil {
				return g.Status(), err
			}
		}
	}
	return g.Status(), nil
}
