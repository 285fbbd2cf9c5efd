// sim/config.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/drakula-game/drakula/graph"
	"github.com/drakula-game/drakula/math"
)

// Config holds all of the parameters of a game session. It is passed in
// when the session is created and is never modified afterward.
type Config struct {
	// MinSeparation is the minimum number of hops between the player's
	// starting airport and Dracula's.
	MinSeparation int
	PruneLength   int
	PruneMode     graph.PruneMode
	// TrapDuration is the number of completed turns a trap survives; it
	// expires on the turn after that.
	TrapDuration int
	// The player loses when the fraction of destroyed airports is strictly
	// greater than DestructionThreshold.
	DestructionThreshold float64
	InitialTraps         int

	// Pursuit policy weights.
	DestroyedPenalty float64
	TrappedBonus     float64
	AvoidBacktrack   bool
	// TrapBlocksMovement keeps Dracula in place for the turn if he's on a
	// trapped airport.
	TrapBlocksMovement bool

	Ellipsoid      math.Ellipsoid
	MaxInputLength int
}

func DefaultConfig() Config {
	return Config{
		MinSeparation:        3,
		PruneLength:          10,
		PruneMode:            graph.PruneIndependent,
		TrapDuration:         3,
		DestructionThreshold: 0.5,
		InitialTraps:         3,
		DestroyedPenalty:     0.4,
		TrappedBonus:         1.2,
		TrapBlocksMovement:   true,
		Ellipsoid:            math.DefaultEllipsoid,
		MaxInputLength:       16,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MinSeparation < 1:
		return fmt.Errorf("%w: MinSeparation %d must be at least 1", ErrInvalidConfig, c.MinSeparation)
	case c.PruneLength < 0:
		return fmt.Errorf("%w: PruneLength %d must be non-negative", ErrInvalidConfig, c.PruneLength)
	case c.TrapDuration < 0:
		return fmt.Errorf("%w: TrapDuration %d must be non-negative", ErrInvalidConfig, c.TrapDuration)
	case c.DestructionThreshold < 0 || c.DestructionThreshold >= 1:
		return fmt.Errorf("%w: DestructionThreshold %f must be in [0, 1)", ErrInvalidConfig, c.DestructionThreshold)
	case c.InitialTraps < 0:
		return fmt.Errorf("%w: InitialTraps %d must be non-negative", ErrInvalidConfig, c.InitialTraps)
	case c.DestroyedPenalty <= 0 || c.TrappedBonus <= 0:
		return fmt.Errorf("%w: move weights must be positive", ErrInvalidConfig)
	case c.Ellipsoid.Radius <= 0 || c.Ellipsoid.Flattening < 0 || c.Ellipsoid.Flattening >= 1:
		return fmt.Errorf("%w: invalid ellipsoid %+v", ErrInvalidConfig, c.Ellipsoid)
	case c.MaxInputLength < 1:
		return fmt.Errorf("%w: MaxInputLength %d must be positive", ErrInvalidConfig, c.MaxInputLength)
	}
	return nil
}

func (c Config) GraphOptions() graph.Options {
	return graph.Options{PruneLength: c.PruneLength, PruneMode: c.PruneMode}
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("min_separation", c.MinSeparation),
		slog.Int("prune_length", c.PruneLength),
		slog.String("prune_mode", c.PruneMode.String()),
		slog.Int("trap_duration", c.TrapDuration),
		slog.Float64("destruction_threshold", c.DestructionThreshold),
		slog.Int("initial_traps", c.InitialTraps),
		slog.Float64("destroyed_penalty", c.DestroyedPenalty),
		slog.Float64("trapped_bonus", c.TrappedBonus),
		slog.Bool("avoid_backtrack", c.AvoidBacktrack),
		slog.Bool("trap_blocks_movement", c.TrapBlocksMovement))
}
