// cmd/drakula/drakula_test.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	av "github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/graph"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/math"
	"github.com/drakula-game/drakula/rand"
	"github.com/drakula-game/drakula/sim"

	"github.com/gdamore/tcell/v2"
)

// randomAirports returns n airports spread uniformly over the globe.
func randomAirports(n int, seed int64) []av.Airport {
	r := rand.MakeSeeded(seed)
	var aps []av.Airport
	for i := range n {
		aps = append(aps, av.Airport{
			ID:        i + 1,
			Ident:     fmt.Sprintf("R%03d", i),
			Name:      fmt.Sprintf("Airport %d", i),
			Latitude:  math.Degrees(gomath.Asin(2*r.Float64() - 1)),
			Longitude: 360*r.Float64() - 180,
			Continent: av.DefaultContinent,
		})
	}
	return aps
}

func TestParseDebugLayers(t *testing.T) {
	for _, test := range []struct {
		env  string
		want DebugLayers
	}{
		{env: "", want: DebugLayers{}},
		{env: "TIMESKIP", want: DebugLayers{TimeSkip: true}},
		{env: " show_solar_terminator , Show_Dracula,bogus", want: DebugLayers{SolarTerminator: true, ShowDracula: true}},
		{env: "DUMP_STATE,TIMESKIP,,", want: DebugLayers{DumpState: true, TimeSkip: true}},
	} {
		if got := parseDebugLayers(test.env); got != test.want {
			t.Errorf("%q: got %+v, expected %+v", test.env, got, test.want)
		}
	}
}

func TestParseContinents(t *testing.T) {
	cs, err := parseContinents("eu, NA,,sa ")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cs, []string{"EU", "NA", "SA"}) {
		t.Errorf("got %v", cs)
	}

	if _, err := parseContinents("EU,XX"); !errors.Is(err, av.ErrUnknownContinent) {
		t.Errorf("expected ErrUnknownContinent, got %v", err)
	}
}

func setConfigFile(t *testing.T) string {
	fn := filepath.Join(t.TempDir(), "config.json")
	orig := configFilePath
	configFilePath = func(*log.Logger) string { return fn }
	t.Cleanup(func() { configFilePath = orig })
	return fn
}

func TestConfig(t *testing.T) {
	fn := setConfigFile(t)

	// Nothing saved yet.
	c, err := LoadOrMakeDefaultConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.PerContinent != 4 || c.Game != sim.DefaultConfig() {
		t.Errorf("unexpected default config %+v", c)
	}

	c.Continents = []string{"eu"}
	c.Game.TrapDuration = 5
	c.Game.PruneMode = graph.PruneSymmetric
	if err := c.Save(nil); err != nil {
		t.Fatal(err)
	}
	if c.SaveIfChanged(nil) {
		t.Errorf("unchanged config was saved")
	}

	c, err = LoadOrMakeDefaultConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Game.TrapDuration != 5 || c.Game.PruneMode != graph.PruneSymmetric ||
		!slices.Equal(c.Continents, []string{"EU"}) {
		t.Errorf("config didn't survive the round trip: %+v", c)
	}

	// Old game settings are thrown away.
	c.Version = 1
	if err := c.Save(nil); err != nil {
		t.Fatal(err)
	}
	c, err = LoadOrMakeDefaultConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Game != sim.DefaultConfig() || c.Version != CurrentConfigVersion {
		t.Errorf("expected default game settings, got %+v", c.Game)
	}

	c.Game.DestructionThreshold = 2
	if err := c.Save(nil); err != nil {
		t.Fatal(err)
	}
	if c, err = LoadOrMakeDefaultConfig(nil); !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	} else if c.Game != sim.DefaultConfig() {
		t.Errorf("invalid game settings were kept")
	}

	if err := os.WriteFile(fn, []byte("{ not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if c, err = LoadOrMakeDefaultConfig(nil); err == nil {
		t.Errorf("expected an error from corrupt JSON")
	} else if c == nil || c.PerContinent != 4 {
		t.Errorf("expected the default config with corrupt JSON")
	}
}

func TestMapView(t *testing.T) {
	m := mapView{width: 100, height: 51}

	for _, test := range []struct {
		p      math.Point2LL
		scroll float32
		x, y   int
	}{
		{p: math.Point2LL{-180, 90}, x: 0, y: 0},
		{p: math.Point2LL{0, 0}, x: 50, y: 25},
		{p: math.Point2LL{179.9, -90}, x: 99, y: 50},
		{p: math.Point2LL{0, 0}, scroll: 0.25, x: 75, y: 25},
		{p: math.Point2LL{0, 0}, scroll: 0.75, x: 25, y: 25},
	} {
		m.scroll = test.scroll
		if x, y := m.cell(test.p.Project()); x != test.x || y != test.y {
			t.Errorf("%v scroll %f: got (%d, %d), expected (%d, %d)", test.p, test.scroll, x, y, test.x, test.y)
		}
	}

	m.scroll = 0
	if p := m.location(50, 25); math.Abs(p[0]-1.8) > 1e-3 || math.Abs(p[1]) > 1e-3 {
		t.Errorf("location(50, 25) = %v", p)
	}

	// Across the antimeridian, the line wraps around the edges rather than
	// crossing the middle of the map.
	var xs []int
	m.line(math.Point2LL{170, 0}.Project(), math.Point2LL{-170, 0}.Project(), func(x, y int) {
		xs = append(xs, x)
		if y != 25 {
			t.Errorf("unexpected y %d", y)
		}
	})
	if len(xs) > 10 {
		t.Errorf("wrapped line is too long: %v", xs)
	}
	for _, x := range xs {
		if x > 5 && x < 95 {
			t.Errorf("wrapped line crosses the middle of the map: %v", xs)
			break
		}
	}

	var n int
	m.line([2]float32{0.1, 0.2}, [2]float32{0.3, 0.6}, func(x, y int) {
		if x < 10 || x > 30 || y < 10 || y > 30 {
			t.Errorf("(%d, %d) is off the segment", x, y)
		}
		n++
	})
	if n != 21 {
		t.Errorf("expected 21 cells, got %d", n)
	}
}

func TestConnections(t *testing.T) {
	for _, test := range []struct {
		g     graph.Graph
		pairs [][2]int
	}{
		{g: graph.Graph{{1, 2}, {0, 2}, {0, 1}}, pairs: [][2]int{{0, 1}, {0, 2}, {1, 2}}},
		// 2 -> 0 and 2 -> 1 survived pruning only at 2.
		{g: graph.Graph{{1}, {0}, {0, 1}}, pairs: [][2]int{{0, 1}, {2, 0}, {2, 1}}},
		{g: graph.Graph{{}, {}}, pairs: nil},
	} {
		if c := connections(test.g); !slices.Equal(c, test.pairs) {
			t.Errorf("connections(%v) = %v, expected %v", test.g, c, test.pairs)
		}
	}
}

func TestDescribeEvent(t *testing.T) {
	moved := sim.Event{Type: sim.DraculaMovedEvent, From: 1, Airport: 2, Ident: "LFPG"}
	if _, ok := describeEvent(moved, false); ok {
		t.Errorf("Dracula's move was shown")
	}
	if msg, ok := describeEvent(moved, true); !ok || !strings.Contains(msg, "LFPG") {
		t.Errorf("Dracula's move should be shown in debug mode: %q", msg)
	}

	if msg, ok := describeEvent(sim.Event{Type: sim.AirportDestroyedEvent, Ident: "EGLL"}, false); !ok ||
		!strings.Contains(msg, "EGLL") {
		t.Errorf("unexpected message %q", msg)
	}
	if msg, ok := describeEvent(sim.Event{Type: sim.CommandRejectedEvent, Message: "nope"}, false); !ok || msg != "nope" {
		t.Errorf("unexpected message %q", msg)
	}
}

// findRune looks for r on the map, above the status lines.
func findRune(s tcell.Screen, r rune) (int, int, bool) {
	w, h := s.Size()
	for y := range h - statusLines {
		for x := range w {
			if c, _, _, _ := s.GetContent(x, y); c == r {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func TestUI(t *testing.T) {
	airports := randomAirports(80, 3)
	es := sim.NewEventStream(nil)
	g, err := sim.NewGame(airports, "R000", sim.DefaultConfig(), rand.MakeSeeded(3), nil, es)
	if err != nil {
		t.Fatal(err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(120, 40)

	u := NewUI(screen, g, es, DebugLayers{SolarTerminator: true}, nil)
	u.Draw()

	m := mapView{width: 120, height: 40 - statusLines}
	px, py := m.cell(airports[0].Location().Project())
	if c, _, _, _ := screen.GetContent(px, py); c != '@' {
		t.Errorf("expected the player at (%d, %d), got %q", px, py, c)
	}
	if _, _, ok := findRune(screen, 'D'); ok {
		t.Errorf("Dracula is visible")
	}

	for _, r := range "r0" {
		u.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	if g.Input() != "R0" {
		t.Errorf("input %q, expected R0", g.Input())
	}
	u.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	if g.Input() != "R" {
		t.Errorf("input %q, expected R", g.Input())
	}

	// There's no airport R.
	u.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	if g.Turn() != 0 || len(u.messages) != 1 {
		t.Errorf("rejected move: turn %d messages %v", g.Turn(), u.messages)
	}

	u.HandleKey(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModNone))
	if g.Player().Traps != sim.DefaultConfig().InitialTraps-1 {
		t.Errorf("trap key didn't place a trap")
	}
	u.HandleKey(tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModNone))
	if g.Turn() != 1 {
		t.Errorf("pass key didn't end the turn")
	}
	if len(u.messages) > maxMessages {
		t.Errorf("%d messages kept", len(u.messages))
	}

	u.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if u.scroll != scrollStep {
		t.Errorf("scroll %f", u.scroll)
	}
	u.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	u.HandleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if math.Abs(u.scroll-(1-scrollStep)) > 1e-5 {
		t.Errorf("scroll %f, expected %f", u.scroll, 1-scrollStep)
	}

	u.debug.ShowDracula = true
	u.Draw()
	if _, _, ok := findRune(screen, 'D'); !ok && g.Status() == sim.Playing {
		t.Errorf("Dracula isn't shown in debug mode")
	}

	if u.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Errorf("escape didn't quit")
	}
}

func TestRunSimulations(t *testing.T) {
	airports := randomAirports(120, 7)

	a, err := runSimulations(context.Background(), airports, sim.DefaultConfig(), 12, 42, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 12 {
		t.Fatalf("got %d results", len(a))
	}
	for i, r := range a {
		if !r.Status.GameOver() {
			t.Errorf("game %d didn't finish: %+v", i, r)
		}
		if r.Status == sim.LostWorldDestroyed && r.DestroyedFraction <= 0.5 {
			t.Errorf("game %d: world destroyed at %f", i, r.DestroyedFraction)
		}
	}

	b, err := runSimulations(context.Background(), airports, sim.DefaultConfig(), 12, 42, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, b) {
		t.Errorf("simulations aren't reproducible:\n%v\n%v", a, b)
	}

	var sb strings.Builder
	printSimulationSummary(&sb, a)
	if !strings.HasPrefix(sb.String(), "12 games\n") {
		t.Errorf("unexpected summary %q", sb.String())
	}
}
