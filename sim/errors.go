// sim/errors.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrAirportDestroyed      = errors.New("Airport has been destroyed")
	ErrCannotTrap            = errors.New("Can't place a trap here")
	ErrDegenerateInput       = errors.New("Airports don't span a volume")
	ErrGameOver              = errors.New("Game is over")
	ErrInvalidConfig         = errors.New("Invalid configuration")
	ErrInvalidPlayerStart    = errors.New("Invalid player starting airport")
	ErrMalformedInput        = errors.New("Malformed airport code")
	ErrNoMoves               = errors.New("Dracula has no moves")
	ErrNoTrapCharges         = errors.New("No traps left")
	ErrNoValidAdversaryStart = errors.New("No airport is far enough away for Dracula to start")
	ErrNotConnected          = errors.New("Airport is not connected to the current airport")
	ErrUnknownAirport        = errors.New("Unknown airport")
)
