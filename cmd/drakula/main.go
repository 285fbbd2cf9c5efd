// cmd/drakula/main.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// loads the airports, sets up the game, and then either runs the terminal
// front end or a batch of autopilot games.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	av "github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/graph"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/sim"
	"github.com/drakula-game/drakula/util"

	"github.com/apenwarr/fixconsole"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

var (
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	airportsFile = flag.String("airports", "", "path to an ourairports.com airports.csv file (may be .zst-compressed)")
	continents   = flag.String("continents", "", "comma-separated continent codes to pick airports from (default: all)")
	perContinent = flag.Int("per-continent", 0, "number of airports to pick from each continent")
	startAirport = flag.String("start", "", "code of the player's starting airport (default: random)")
	seed         = flag.Int64("seed", 0, "random seed (default: random)")
	pruneMode    = flag.String("prune", "", "how long connections are removed: independent or symmetric")
	simulate     = flag.Int("simulate", 0, "play the given number of games with the autopilot and print a summary")
	fetch        = flag.Bool("fetch", false, "download the airports file from the configured bucket")
	gcsBucket    = flag.String("bucket", "", "Google Cloud Storage bucket holding the airports file")
	gcsObject    = flag.String("object", "", "name of the airports file in the bucket")
	gcsCreds     = flag.String("credentials", "", "service account JSON file for the bucket (default: anonymous access)")
	saveConfig   = flag.Bool("saveconfig", false, "save the settings given on the command line as the defaults")
)

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	// Initialize the logging system first and foremost.
	lg := log.New(*logLevel, *logDir)
	lg = lg.With(slog.String("session", uuid.NewString()))
	if !util.DebuggerIsRunning() {
		defer lg.CatchAndReportCrash()
	}

	config, err := LoadOrMakeDefaultConfig(lg)
	if err != nil {
		lg.Errorf("Error loading config: %v", err)
		fmt.Fprintf(os.Stderr, "Using the default configuration: %v\n", err)
	}
	if err := applyFlags(config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *saveConfig {
		config.SaveIfChanged(lg)
	}

	if err := run(config, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags overrides the config with any flags given on the command
// line.
func applyFlags(config *Config) error {
	var errs []error
	flag.Visit(func(f *flag.Flag) {
		var err error
		switch f.Name {
		case "airports":
			config.AirportsFile = *airportsFile
		case "continents":
			config.Continents, err = parseContinents(*continents)
		case "per-continent":
			config.PerContinent = *perContinent
		case "prune":
			config.Game.PruneMode, err = graph.ParsePruneMode(*pruneMode)
		case "bucket":
			config.GCSBucket = *gcsBucket
		case "object":
			config.GCSObject = *gcsObject
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("-%s: %w", f.Name, err))
		}
	})
	errs = append(errs, config.Game.Validate())
	return errors.Join(errs...)
}

func run(config *Config, lg *log.Logger) error {
	path, err := airportsPath(config, lg)
	if err != nil {
		return err
	}

	src, err := av.LoadCSVSource(path, config.AirportTypes, lg)
	if err != nil {
		return err
	}

	r := rand.Make()
	if *seed != 0 {
		r = rand.MakeSeeded(*seed)
	}
	lg.Info("session", slog.Int64("seed", r.SeedValue()), slog.Any("config", config.Game))

	airports, err := av.SessionAirports(src, r, config.PerContinent, config.Continents)
	if err != nil {
		return err
	}
	if err := av.ValidateAirports(airports); err != nil {
		return err
	}

	if *simulate > 0 {
		start := time.Now()
		results, err := runSimulations(context.Background(), airports, config.Game, *simulate, r.SeedValue(), lg)
		if err != nil {
			return err
		}
		printSimulationSummary(os.Stdout, results)
		lg.Info("simulation finished", slog.Int("games", len(results)), slog.Duration("elapsed", time.Since(start)))
		return nil
	}

	es := sim.NewEventStream(lg)
	game, err := sim.NewGame(airports, *startAirport, config.Game, r, lg, es)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	debug := parseDebugLayers(os.Getenv(debugLayersEnv))
	lg.Info("starting", slog.Any("debug", debug))
	NewUI(screen, game, es, debug, lg).Run()

	return nil
}

// airportsPath returns the path to the airports file, downloading it from
// the bucket first if requested or if it isn't available locally.
func airportsPath(config *Config, lg *log.Logger) (string, error) {
	path := config.AirportsFile
	if !*fetch && util.ResourceExists(path) {
		return path, nil
	}
	if config.GCSBucket == "" {
		return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}

	var creds []byte
	if *gcsCreds != "" {
		var err error
		if creds, err = os.ReadFile(*gcsCreds); err != nil {
			return "", err
		}
	}

	client, err := util.MakeGCSClient(config.GCSBucket, util.GCSClientConfig{Credentials: creds})
	if err != nil {
		return "", err
	}

	dir, err := util.CacheDir()
	if err != nil {
		return "", err
	}
	path = filepath.Join(dir, "airports", filepath.Base(config.GCSObject))

	objs, err := client.List(config.GCSObject)
	if err != nil {
		return "", err
	}
	size, ok := objs[config.GCSObject]
	if !ok {
		return "", fmt.Errorf("gs://%s/%s: %w", config.GCSBucket, config.GCSObject, fs.ErrNotExist)
	}

	lg.Info("downloading airports", slog.String("bucket", config.GCSBucket),
		slog.String("object", config.GCSObject), slog.Int64("bytes", size), slog.String("path", path))
	if err := client.Download(config.GCSObject, path); err != nil {
		return "", fmt.Errorf("gs://%s/%s: %w", config.GCSBucket, config.GCSObject, err)
	}
	return path, nil
}
