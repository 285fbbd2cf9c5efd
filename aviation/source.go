// aviation/source.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/util"
)

// Source provides airport records for a game session.
type Source interface {
	// Continents returns the continent codes for which the source has
	// airports, sorted.
	Continents() []string
	// RandomAirports returns up to count distinct airports from the given
	// continent; fewer are returned if the source doesn't have enough.
	RandomAirports(r *rand.Rand, count int, continent string) ([]Airport, error)
}

const DefaultContinent = "EU"

// CSVSource is an in-memory Source holding airports from an
// ourairports.com CSV file.
type CSVSource struct {
	airports    []Airport
	byContinent map[string][]int
}

// NewCSVSource builds a source from the given airports. If types is
// non-empty, only airports with one of the given types (e.g.
// "large_airport") are kept.
func NewCSVSource(airports []Airport, types []string) *CSVSource {
	s := &CSVSource{byContinent: make(map[string][]int)}
	for _, ap := range airports {
		if len(types) > 0 && !slices.Contains(types, ap.Type) {
			continue
		}
		s.byContinent[ap.Continent] = append(s.byContinent[ap.Continent], len(s.airports))
		s.airports = append(s.airports, ap)
	}
	return s
}

func (s *CSVSource) Continents() []string {
	return util.SortedMapKeys(s.byContinent)
}

func (s *CSVSource) Len() int {
	return len(s.airports)
}

func (s *CSVSource) RandomAirports(r *rand.Rand, count int, continent string) ([]Airport, error) {
	if count <= 0 {
		count = 1
	}
	if continent == "" {
		continent = DefaultContinent
	}
	continent = strings.ToUpper(continent)

	idx, ok := s.byContinent[continent]
	if !ok {
		return nil, fmt.Errorf("%s: %w", continent, ErrUnknownContinent)
	}

	idx = slices.Clone(idx)
	rand.ShuffleSlice(idx, r)
	idx = idx[:min(count, len(idx))]

	return util.MapSlice(idx, func(i int) Airport { return s.airports[i] }), nil
}

// cachedAirports is what's stored in the cache for a parsed CSV file.
type cachedAirports struct {
	Source   string
	Airports []Airport
}

// LoadCSVSource loads airports from path, which may be zstd-compressed.
// Parsed records are cached; the cache is used as long as it is newer than
// the file.
func LoadCSVSource(path string, types []string, lg *log.Logger) (*CSVSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cachePath := filepath.Join("airports", filepath.Base(path)+".msgpack")

	var cached cachedAirports
	if t, err := util.CacheRetrieveObject(cachePath, &cached); err == nil && cached.Source == abs &&
		!t.Before(fi.ModTime()) && len(cached.Airports) > 0 {
		lg.Info("using cached airports", slog.String("path", cachePath), slog.Int("count", len(cached.Airports)))
		return NewCSVSource(cached.Airports, types), nil
	}

	r, err := util.OpenResource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	airports, err := ParseAirportsCSV(r, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if len(airports) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoAirportsLoaded)
	}
	lg.Info("parsed airports", slog.String("path", path), slog.Int("count", len(airports)))

	if err := util.CacheStoreObject(cachePath, cachedAirports{Source: abs, Airports: airports}); err != nil {
		lg.Warnf("%s: unable to cache airports: %v", cachePath, err)
	}

	return NewCSVSource(airports, types), nil
}

// SessionAirports gathers perContinent random airports from each of the
// given continents (or all of the source's continents, if none are given).
// Airports with an ident already chosen are skipped.
func SessionAirports(src Source, r *rand.Rand, perContinent int, continents []string) ([]Airport, error) {
	if len(continents) == 0 {
		continents = src.Continents()
	}

	var airports []Airport
	seen := make(map[string]struct{})
	for _, c := range continents {
		aps, err := src.RandomAirports(r, perContinent, c)
		if err != nil {
			return nil, err
		}
		for _, ap := range aps {
			key := strings.ToUpper(ap.Ident)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			airports = append(airports, ap)
		}
	}

	if len(airports) == 0 {
		return nil, ErrNoAirportsLoaded
	}
	return airports, nil
}
