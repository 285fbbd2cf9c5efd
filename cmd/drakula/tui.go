// cmd/drakula/tui.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/drakula-game/drakula/graph"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/math"
	"github.com/drakula-game/drakula/sim"
	"github.com/drakula-game/drakula/util"

	"github.com/gdamore/tcell/v2"
)

const (
	statusLines = 4
	maxMessages = 3
	scrollStep  = 0.05
	// With the TIMESKIP layer, an hour of map time passes each second.
	timeSkipRate = 3600
)

var (
	styleMap       = tcell.StyleDefault
	styleNight     = tcell.StyleDefault.Background(tcell.ColorNavy)
	styleEdge      = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleWrapEdge  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleAvailable = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDestroyed = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleTrapped   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePlayer    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleDracula   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleTrail     = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleNeighbor  = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleWarning   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDump      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// UI is the terminal front end: it draws the game's snapshot and turns
// keystrokes into commands.
type UI struct {
	screen tcell.Screen
	game   *sim.Game
	events *sim.EventsSubscription
	debug  DebugLayers
	lg     *log.Logger

	// scroll is the horizontal map offset as a fraction of its width.
	scroll   float32
	messages []string
	warning  bool
	start    time.Time
	now      func() time.Time
}

func NewUI(screen tcell.Screen, game *sim.Game, es *sim.EventStream, debug DebugLayers, lg *log.Logger) *UI {
	return &UI{
		screen: screen,
		game:   game,
		events: es.Subscribe(),
		debug:  debug,
		lg:     lg,
		start:  time.Now(),
		now:    time.Now,
	}
}

// Run draws and handles events until the user quits.
func (u *UI) Run() {
	defer u.events.Unsubscribe()

	if u.debug.SolarTerminator {
		// Keep the terminator moving.
		done := make(chan struct{})
		defer close(done)
		go func() {
			t := time.NewTicker(time.Second)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}()
	}

	for {
		u.Draw()
		u.screen.Show()

		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if !u.HandleKey(ev) {
				return
			}
		case nil:
			return
		}
	}
}

// HandleKey processes a keystroke and returns false if the user asked to
// quit.
func (u *UI) HandleKey(ev *tcell.EventKey) bool {
	g := u.game

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		u.scroll = wrap01(u.scroll + scrollStep)
	case tcell.KeyRight:
		u.scroll = wrap01(u.scroll - scrollStep)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		g.Backspace()
	case tcell.KeyEnter:
		u.report(g.SubmitInput())
	case tcell.KeyTab, tcell.KeyCtrlT:
		u.report(g.SubmitTrap())
	case tcell.KeyCtrlW:
		u.report(g.SubmitPass())
	case tcell.KeyRune:
		if !g.Status().GameOver() {
			g.AppendInput(ev.Rune())
		}
	}
	return true
}

func (u *UI) report(res sim.TurnResult, err error) {
	if err != nil {
		u.lg.Debug("command rejected", slog.Any("error", err))
	}
	u.warning = res.ProximityWarning

	for _, e := range u.events.Get() {
		if msg, ok := describeEvent(e, u.debug.ShowDracula); ok {
			u.messages = append(u.messages, msg)
		}
	}
	if n := len(u.messages); n > maxMessages {
		u.messages = u.messages[n-maxMessages:]
	}
}

// describeEvent returns the player-facing message for an event; events
// that would give Dracula away are hidden unless showDracula is set.
func describeEvent(e sim.Event, showDracula bool) (string, bool) {
	switch e.Type {
	case sim.PlayerMovedEvent:
		return fmt.Sprintf("Flew to %s.", e.Ident), true
	case sim.PlayerPassedEvent:
		return fmt.Sprintf("Waited at %s.", e.Ident), true
	case sim.TrapPlacedEvent:
		return fmt.Sprintf("Set a trap at %s.", e.Ident), true
	case sim.TrapExpiredEvent:
		return fmt.Sprintf("The trap at %s has worn off.", e.Ident), true
	case sim.AirportDestroyedEvent:
		return fmt.Sprintf("%s has been destroyed!", e.Ident), true
	case sim.ProximityWarningEvent:
		return "Dracula is next to one of your traps.", true
	case sim.CommandRejectedEvent:
		return e.Message, true
	case sim.GameOverEvent:
		return fmt.Sprintf("Game over: %s. Dracula was at %s.", e.Status, e.Ident), true
	case sim.DraculaMovedEvent, sim.DraculaHeldEvent:
		return e.String(), showDracula
	default:
		return "", false
	}
}

func (u *UI) mapTime() time.Time {
	now := u.now()
	if u.debug.TimeSkip {
		return u.start.Add(now.Sub(u.start) * timeSkipRate)
	}
	return now
}

// Draw renders the current state of the game to the screen.
func (u *UI) Draw() {
	s := u.game.Snapshot()
	u.screen.Clear()

	w, h := u.screen.Size()
	mh := h - statusLines
	if w < 1 || mh < 1 {
		return
	}
	m := mapView{width: w, height: mh, scroll: u.scroll}

	if u.debug.SolarTerminator {
		t := u.mapTime()
		for y := range mh {
			for x := range w {
				if math.IsNight(m.location(x, y), t) {
					u.screen.SetContent(x, y, ' ', nil, styleNight)
				}
			}
		}
	}

	for _, e := range connections(s.Graph) {
		pa, pb := s.Airports[e[0]].Location().Project(), s.Airports[e[1]].Location().Project()
		style := util.Select(math.ShouldWrap(pa[0], pb[0], 1), styleWrapEdge, styleEdge)
		m.line(pa, pb, func(x, y int) { u.setRune(x, y, '·', style) })
	}

	showDracula := u.debug.ShowDracula || s.Status.GameOver()
	if showDracula {
		for _, i := range s.DraculaTrail {
			x, y := m.cell(s.Airports[i].Location().Project())
			u.setRune(x, y, '+', styleTrail)
		}
	}

	for i, ap := range s.Airports {
		x, y := m.cell(ap.Location().Project())
		switch s.States[i].Status {
		case sim.Destroyed:
			u.setRune(x, y, 'x', styleDestroyed)
		case sim.Trapped:
			u.setRune(x, y, '#', styleTrapped)
		default:
			u.setRune(x, y, 'o', styleAvailable)
		}
	}

	for _, n := range s.Neighbors {
		x, y := m.cell(s.Airports[n.Index].Location().Project())
		u.drawText(x+1, y, n.Ident, styleNeighbor)
	}

	if showDracula {
		x, y := m.cell(s.Airports[s.DraculaLocation].Location().Project())
		u.setRune(x, y, 'D', styleDracula)
	}

	px, py := m.cell(s.Airports[s.PlayerLocation].Location().Project())
	u.setRune(px, py, '@', stylePlayer)
	u.drawText(px+1, py, s.Airports[s.PlayerLocation].Ident, stylePlayer)

	if u.debug.DumpState {
		for i, line := range strings.Split(u.game.Dump(), "\n") {
			if i >= mh {
				break
			}
			u.drawText(w/2, i, line, styleDump)
		}
	}

	u.drawStatus(s, w, mh)
}

func (u *UI) drawStatus(s sim.Snapshot, w, y int) {
	status := fmt.Sprintf(" Turn %d | Traps %d | Destroyed %.0f%% | %s", s.Turn, s.Traps,
		100*s.DestroyedFraction, s.Status)
	u.drawText(0, y, status+strings.Repeat(" ", max(0, w-len(status))), styleStatus)

	ap := s.Airports[s.PlayerLocation]
	u.drawText(0, y+1, fmt.Sprintf(" %s (%s) > %s_", ap.Name, ap.Ident, s.Input), styleMap)

	var sb strings.Builder
	sb.WriteString(" Flights:")
	for _, n := range s.Neighbors {
		fmt.Fprintf(&sb, " %s %.0fkm", n.Ident, n.DistanceKm)
		if n.Status != sim.Available {
			fmt.Fprintf(&sb, " (%s)", n.Status)
		}
	}
	u.drawText(0, y+2, sb.String(), styleMap)

	msg := strings.Join(u.messages, " ")
	style := styleMap
	if u.warning {
		msg = "WARNING: Dracula is next to a trap. " + msg
		style = styleWarning
	}
	u.drawText(0, y+3, " "+msg, style)
}

func (u *UI) setRune(x, y int, r rune, style tcell.Style) {
	// Keep the night shading under whatever's drawn on top of it.
	_, _, cur, _ := u.screen.GetContent(x, y)
	_, bg, _ := cur.Decompose()
	u.screen.SetContent(x, y, r, nil, style.Background(bg))
}

func (u *UI) drawText(x, y int, s string, style tcell.Style) {
	w, _ := u.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		if x >= 0 {
			u.setRune(x, y, r, style)
		}
		x++
	}
}

// mapView maps normalized equirectangular map coordinates to screen cells.
type mapView struct {
	width, height int
	scroll        float32
}

func wrap01(v float32) float32 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
}

func (m mapView) cell(p [2]float32) (int, int) {
	x := int(wrap01(p[0]+m.scroll) * float32(m.width))
	y := int(math.Clamp(p[1], 0, 1) * float32(m.height-1))
	return min(x, m.width-1), y
}

// location returns the latitude-longitude at the center of the given cell.
func (m mapView) location(x, y int) math.Point2LL {
	px := wrap01((float32(x)+0.5)/float32(m.width) - m.scroll)
	py := float32(y) / float32(max(1, m.height-1))
	return math.Point2LL{px*360 - 180, 90 - py*180}
}

// line calls plot for each cell on the segment from a to b. Segments that
// are shorter going across the edge of the map wrap around it.
func (m mapView) line(a, b [2]float32, plot func(x, y int)) {
	if a[0] > b[0] {
		a, b = b, a
	}
	if math.ShouldWrap(a[0], b[0], 1) {
		b[0]--
	}

	x0 := int((a[0] + m.scroll) * float32(m.width))
	x1 := int((b[0] + m.scroll) * float32(m.width))
	y0 := int(math.Clamp(a[1], 0, 1) * float32(m.height-1))
	y1 := int(math.Clamp(b[1], 0, 1) * float32(m.height-1))

	// Bresenham
	dx, dy := math.Abs(x1-x0), -math.Abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errv := dx + dy
	for {
		x := x0 % m.width
		if x < 0 {
			x += m.width
		}
		plot(x, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errv
		if e2 >= dy {
			errv += dy
			x0 += sx
		}
		if e2 <= dx {
			errv += dx
			y0 += sy
		}
	}
}

// connections returns each pair of connected airports once. After
// independent pruning a connection may only be present in one direction.
func connections(g graph.Graph) [][2]int {
	var c [][2]int
	for a, ns := range g {
		for _, b := range ns {
			if b > a || !g.Connected(b, a) {
				c = append(c, [2]int{a, b})
			}
		}
	}
	return c
}
