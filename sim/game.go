// sim/game.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/drakula-game/drakula/aviation"
	"github.com/drakula-game/drakula/log"
	"github.com/drakula-game/drakula/math"
)

type Status int

const (
	Playing Status = iota
	Won
	LostCaught
	LostWorldDestroyed
	// Aborted means the game couldn't continue because the world is
	// broken (Dracula had nowhere to go), not that anyone lost.
	Aborted
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case LostCaught:
		return "caught by Dracula"
	case LostWorldDestroyed:
		return "world destroyed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) GameOver() bool {
	return s != Playing
}

// TurnResult describes what a command did.
type TurnResult struct {
	// Accepted is false if the command was rejected; nothing changed in
	// that case.
	Accepted bool
	// TurnConsumed is set for moves and passes; placing a trap doesn't end
	// the turn.
	TurnConsumed bool
	Status       Status
	DraculaMoved bool
	DraculaHeld  bool
	// Destroyed is the airport Dracula destroyed this turn, or NotFound.
	Destroyed    int
	ExpiredTraps []int
	// ProximityWarning is set when Dracula is next to a trap.
	ProximityWarning bool
}

// Game runs a session: it validates the player's commands and advances the
// world one turn at a time. It is not safe for concurrent use.
type Game struct {
	state  *State
	brain  *Brain
	player Player
	status Status
	turn   int
	// lastDestroyed is the airport destroyed on the most recent turn, if
	// any; the player sees it as a clue to where Dracula went.
	lastDestroyed int

	r  RandomSource
	es *EventStream
	lg *log.Logger
}

// NewGame starts a session with the player at the airport with the given
// code; if code is empty, the player starts at a random airport. es may
// be nil.
func NewGame(airports []aviation.Airport, playerStart string, cfg Config, r RandomSource, lg *log.Logger,
	es *EventStream) (*Game, error) {
	if len(airports) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDegenerateInput, math.ErrDegenerateInput)
	}

	start := NotFound
	if playerStart != "" {
		code := strings.ToUpper(strings.TrimSpace(playerStart))
		for i, ap := range airports {
			if strings.ToUpper(strings.TrimSpace(ap.Ident)) == code {
				start = i
				break
			}
		}
		if start == NotFound {
			return nil, fmt.Errorf("%s: %w", playerStart, ErrUnknownAirport)
		}
	}

	return NewGameAt(airports, start, cfg, r, lg, es)
}

// NewGameAt is like NewGame but takes the index of the player's starting
// airport, or NotFound for a random one.
func NewGameAt(airports []aviation.Airport, playerStart int, cfg Config, r RandomSource, lg *log.Logger,
	es *EventStream) (*Game, error) {
	s, err := NewState(airports, playerStart, cfg, r, lg)
	if err != nil {
		return nil, err
	}
	return newGame(s, s.PlayerStart(), r, lg, es), nil
}

func newGame(s *State, playerStart int, r RandomSource, lg *log.Logger, es *EventStream) *Game {
	g := &Game{
		state: s,
		brain: NewBrain(),
		player: Player{
			Location: playerStart,
			Traps:    s.cfg.InitialTraps,
			Input:    MakeInputBuffer(s.cfg.MaxInputLength),
		},
		lastDestroyed: NotFound,
		r:             r,
		es:            es,
		lg:            lg,
	}
	lg.Info("game started", slog.String("player", s.airports[playerStart].Ident),
		slog.Int("traps", g.player.Traps))
	return g
}

func (g *Game) Status() Status {
	return g.status
}

// Turn returns the number of completed turns.
func (g *Game) Turn() int {
	return g.turn
}

// Player returns a copy of the player's state.
func (g *Game) Player() Player {
	p := g.player
	p.Input = p.Input.Clone()
	return p
}

func (g *Game) Input() string {
	return g.player.Input.String()
}

func (g *Game) AppendInput(r rune) bool {
	return g.player.Input.Append(r)
}

func (g *Game) Backspace() bool {
	return g.player.Input.Backspace()
}

// SubmitInput submits the typed code as a move and clears the input.
func (g *Game) SubmitInput() (TurnResult, error) {
	return g.SubmitMove(g.player.Input.Take())
}

// SubmitMove moves the player to the airport with the given code, which
// must be connected to the player's airport and not destroyed, unless
// Dracula is there.
func (g *Game) SubmitMove(code string) (TurnResult, error) {
	if g.status.GameOver() {
		return g.reject(ErrGameOver)
	}

	norm, ok := ParseAirportCode(code)
	if !ok {
		return g.reject(fmt.Errorf("%q: %w", code, ErrMalformedInput))
	}
	idx := g.state.IndexByCode(norm)
	if idx == NotFound {
		return g.reject(fmt.Errorf("%s: %w", norm, ErrUnknownAirport))
	}
	return g.MoveTo(idx)
}

// MoveTo is SubmitMove for an airport index.
func (g *Game) MoveTo(idx int) (TurnResult, error) {
	s := g.state
	if g.status.GameOver() {
		return g.reject(ErrGameOver)
	}
	if !s.valid(idx) {
		return g.reject(fmt.Errorf("%d: %w", idx, ErrUnknownAirport))
	}
	ident := s.airports[idx].Ident
	if !s.graph.Connected(g.player.Location, idx) {
		return g.reject(fmt.Errorf("%s: %w", ident, ErrNotConnected))
	}
	if s.states[idx].Status == Destroyed && idx != s.dracula {
		return g.reject(fmt.Errorf("%s: %w", ident, ErrAirportDestroyed))
	}

	from := g.player.Location
	g.player.Location = idx
	g.turn++
	g.post(Event{Type: PlayerMovedEvent, From: from, Airport: idx, Ident: ident})

	res := TurnResult{Accepted: true, TurnConsumed: true, Destroyed: NotFound}
	if idx == s.dracula {
		g.finish(Won)
		res.Status = g.status
		return res, nil
	}
	return g.endTurn(res)
}

// SubmitPass ends the turn without moving.
func (g *Game) SubmitPass() (TurnResult, error) {
	if g.status.GameOver() {
		return g.reject(ErrGameOver)
	}

	g.turn++
	loc := g.player.Location
	g.post(Event{Type: PlayerPassedEvent, Airport: loc, Ident: g.state.airports[loc].Ident})

	return g.endTurn(TurnResult{Accepted: true, TurnConsumed: true, Destroyed: NotFound})
}

// SubmitTrap places a trap at the player's airport. It doesn't end the
// turn.
func (g *Game) SubmitTrap() (TurnResult, error) {
	s := g.state
	loc := g.player.Location
	if g.status.GameOver() {
		return g.reject(ErrGameOver)
	}
	if g.player.Traps < 1 {
		return g.reject(ErrNoTrapCharges)
	}
	if st := s.states[loc].Status; st != Available {
		return g.reject(fmt.Errorf("%s is %s: %w", s.airports[loc].Ident, st, ErrCannotTrap))
	}

	g.player.Traps--
	s.TrapLocation(loc)
	g.post(Event{Type: TrapPlacedEvent, Airport: loc, Ident: s.airports[loc].Ident})

	return TurnResult{
		Accepted:         true,
		Status:           g.status,
		Destroyed:        NotFound,
		ProximityWarning: s.IsDraculaAdjacentToTrap(),
	}, nil
}

// endTurn runs Dracula's half of the turn after the player has moved or
// passed.
func (g *Game) endTurn(res TurnResult) (TurnResult, error) {
	s := g.state
	g.lastDestroyed = NotFound

	res.ExpiredTraps = s.TickTrapTimers()
	for _, i := range res.ExpiredTraps {
		g.player.Traps++
		g.post(Event{Type: TrapExpiredEvent, Airport: i, Ident: s.airports[i].Ident})
	}

	if s.cfg.TrapBlocksMovement && s.IsDraculaOnTrap() {
		res.DraculaHeld = true
		g.post(Event{Type: DraculaHeldEvent, Airport: s.dracula, Ident: s.airports[s.dracula].Ident})
	} else {
		to, err := g.brain.Choose(s, s.dracula, g.r)
		if err != nil {
			g.lg.Error("dracula can't move", slog.Any("error", err), slog.Any("state", s))
			g.finish(Aborted)
			res.Status = g.status
			return res, err
		}

		prev := s.MoveDracula(to)
		res.DraculaMoved = true
		g.post(Event{Type: DraculaMovedEvent, From: prev, Airport: to, Ident: s.airports[to].Ident})

		res.Destroyed = prev
		g.lastDestroyed = prev
		g.post(Event{Type: AirportDestroyedEvent, Airport: prev, Ident: s.airports[prev].Ident})

		if to == g.player.Location {
			g.finish(LostCaught)
		} else if s.DestroyedFraction() > s.cfg.DestructionThreshold {
			g.finish(LostWorldDestroyed)
		}
	}

	if !g.status.GameOver() && s.IsDraculaAdjacentToTrap() {
		res.ProximityWarning = true
		g.post(Event{Type: ProximityWarningEvent, Airport: g.player.Location})
	}

	res.Status = g.status
	return res, nil
}

func (g *Game) reject(err error) (TurnResult, error) {
	g.lg.Debug("command rejected", slog.Any("error", err))
	g.post(Event{Type: CommandRejectedEvent, Message: err.Error()})

	res := TurnResult{Status: g.status, Destroyed: NotFound}
	if !g.status.GameOver() {
		res.ProximityWarning = g.state.IsDraculaAdjacentToTrap()
	}
	return res, err
}

func (g *Game) finish(st Status) {
	g.status = st
	g.post(Event{Type: GameOverEvent, Status: st, Airport: g.state.dracula,
		Ident: g.state.airports[g.state.dracula].Ident})
	g.lg.Info("game over", slog.String("status", st.String()), slog.Int("turn", g.turn),
		slog.Float64("destroyed", g.state.DestroyedFraction()))
}

func (g *Game) post(e Event) {
	if g.es != nil {
		e.Turn = g.turn
		g.es.Post(e)
	}
}
