// cmd/drakula/config.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	av "github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/sim"
)

// CurrentConfigVersion should be bumped whenever sim.Config changes in a
// way that makes older saved settings meaningless.
const CurrentConfigVersion = 2

type Config struct {
	Version int

	// Where the airports come from. If GCSBucket is set and AirportsFile
	// doesn't exist, the file is downloaded from the bucket.
	AirportsFile string
	GCSBucket    string
	GCSObject    string
	AirportTypes []string

	Continents   []string
	PerContinent int

	Game sim.Config
}

// configFilePath is a variable so that tests can point it elsewhere.
var configFilePath = func(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}

	dir = filepath.Join(dir, "Drakula")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		lg.Errorf("%s: unable to make directory for config file: %v", dir, err)
	}

	return filepath.Join(dir, "config.json")
}

func getDefaultConfig() *Config {
	return &Config{
		Version:      CurrentConfigVersion,
		AirportsFile: "airports.csv",
		GCSObject:    "airports.csv.zst",
		AirportTypes: []string{"large_airport", "medium_airport"},
		PerContinent: 4,
		Game:         sim.DefaultConfig(),
	}
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

func (c *Config) Save(lg *log.Logger) error {
	fn := configFilePath(lg)
	lg.Infof("Saving config to: %s", fn)
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Encode(f)
}

// SaveIfChanged writes the config only if it differs from what's on disk.
func (c *Config) SaveIfChanged(lg *log.Logger) bool {
	fn := configFilePath(lg)
	onDisk, err := os.ReadFile(fn)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		lg.Warnf("%s: unable to read config file: %v", fn, err)
	}

	var b strings.Builder
	if err := c.Encode(&b); err != nil {
		lg.Errorf("%s: unable to encode config: %v", fn, err)
		return false
	}
	if b.String() == string(onDisk) {
		return false
	}

	if err := c.Save(lg); err != nil {
		lg.Errorf("%s: %v", fn, err)
	}
	return true
}

// LoadOrMakeDefaultConfig returns the saved config, if there is one, or
// the defaults. If the saved config can't be used, the defaults are
// returned along with the error.
func LoadOrMakeDefaultConfig(lg *log.Logger) (config *Config, configErr error) {
	fn := configFilePath(lg)
	lg.Infof("Loading config from: %s", fn)

	config = getDefaultConfig()

	contents, err := os.ReadFile(fn)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			configErr = err
		}
		return
	}

	c := &Config{}
	if err := json.NewDecoder(bytes.NewReader(contents)).Decode(c); err != nil {
		return config, fmt.Errorf("%s: %w", fn, err)
	}

	if c.Version < CurrentConfigVersion {
		// The game parameters have changed meaning; start over with them.
		lg.Infof("%s: config version %d is out of date; using default game settings", fn, c.Version)
		c.Game = sim.DefaultConfig()
	}
	if err := c.Game.Validate(); err != nil {
		configErr = fmt.Errorf("%s: %w", fn, err)
		c.Game = sim.DefaultConfig()
	}

	if c.AirportsFile == "" {
		c.AirportsFile = config.AirportsFile
	}
	if c.PerContinent <= 0 {
		c.PerContinent = config.PerContinent
	}
	for i, cont := range c.Continents {
		c.Continents[i] = strings.ToUpper(strings.TrimSpace(cont))
	}
	c.Version = CurrentConfigVersion

	return c, configErr
}

// parseContinents splits a comma-separated list of continent codes,
// checking that each one is known.
func parseContinents(s string) ([]string, error) {
	var cs []string
	for _, c := range strings.Split(s, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !slices.Contains(av.Continents, c) {
			return nil, fmt.Errorf("%s: %w", c, av.ErrUnknownContinent)
		}
		cs = append(cs, c)
	}
	return cs, nil
}
