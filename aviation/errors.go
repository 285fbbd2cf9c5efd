// aviation/errors.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
)

var (
	ErrInvalidAirports  = errors.New("Invalid airport list")
	ErrMissingCSVField  = errors.New("Missing CSV field")
	ErrUnknownContinent = errors.New("Unknown continent")
	ErrNoAirportsLoaded = errors.New("No airports loaded")
	ErrInvalidCSVRecord = errors.New("Invalid CSV record")
)
