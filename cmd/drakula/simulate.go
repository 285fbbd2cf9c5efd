// cmd/drakula/simulate.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	av "github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/sim"

	"golang.org/x/sync/errgroup"
)

// Autopilot games that run longer than this are stopped.
const maxSimCommands = 20000

type simResult struct {
	Status            sim.Status
	Turns             int
	DestroyedFraction float64
}

// runSimulations plays n games on the given airports with the autopilot,
// in parallel. Game i is seeded with seed+i, so the results are
// reproducible.
func runSimulations(ctx context.Context, airports []av.Airport, cfg sim.Config, n int, seed int64,
	lg *log.Logger) ([]simResult, error) {
	results := make([]simResult, n)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := rand.MakeSeeded(seed + int64(i))
			glg := lg.With(slog.Int("game", i))
			g, err := sim.NewGame(airports, "", cfg, r, glg, nil)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}

			st, err := sim.Play(g, sim.NewAutopilot(r), maxSimCommands)
			if err != nil && st != sim.Aborted {
				return fmt.Errorf("game %d: %w", i, err)
			}

			results[i] = simResult{
				Status:            st,
				Turns:             g.Turn(),
				DestroyedFraction: g.Snapshot().DestroyedFraction,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printSimulationSummary(w io.Writer, results []simResult) {
	counts := make(map[sim.Status]int)
	turns := make(map[sim.Status]int)
	for _, r := range results {
		counts[r.Status]++
		turns[r.Status] += r.Turns
	}

	fmt.Fprintf(w, "%d games\n", len(results))
	for _, st := range []sim.Status{sim.Playing, sim.Won, sim.LostCaught, sim.LostWorldDestroyed, sim.Aborted} {
		if counts[st] == 0 {
			continue
		}
		fmt.Fprintf(w, "%-20s %5d (%5.1f%%)  avg %.1f turns\n", st.String()+":", counts[st],
			100*float64(counts[st])/float64(len(results)), float64(turns[st])/float64(counts[st]))
	}
}
