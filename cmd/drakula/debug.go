// cmd/drakula/debug.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"strings"
)

const debugLayersEnv = "DRAKULA_DEBUG_LAYERS"

// DebugLayers are developer overlays, enabled with a comma-separated list
// of names in $DRAKULA_DEBUG_LAYERS.
type DebugLayers struct {
	SolarTerminator bool // shade the night side of the map
	TimeSkip        bool // run the map clock quickly
	ShowDracula     bool // show where Dracula is and has been
	DumpState       bool // show the full game state
}

func parseDebugLayers(s string) DebugLayers {
	var d DebugLayers
	for _, layer := range strings.Split(s, ",") {
		switch strings.ToUpper(strings.TrimSpace(layer)) {
		case "SHOW_SOLAR_TERMINATOR":
			d.SolarTerminator = true
		case "TIMESKIP":
			d.TimeSkip = true
		case "SHOW_DRACULA":
			d.ShowDracula = true
		case "DUMP_STATE":
			d.DumpState = true
		}
	}
	return d
}
