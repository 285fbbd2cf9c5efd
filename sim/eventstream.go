// sim/eventstream.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/drakula-game/drakula/log"
)

// longStream is the stream length past which we suspect that a subscriber
// has stopped calling Get.
const longStream = 1000

// EventStream is a simple pub/sub queue: the Game posts events as turns
// are played and the front end and tests subscribe to find out what
// happened. Events posted while there are no subscribers are dropped.
type EventStream struct {
	mu         sync.Mutex
	events     []Event
	subs       []*EventsSubscription
	warnedLong bool
	lg         *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// next is the index in stream.events of the first event that the
	// subscriber hasn't seen yet.
	next int
	// caller is where Subscribe was called from.
	caller string
}

func (s *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(slog.Int("next", s.next), slog.String("caller", s.caller))
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{lg: lg}
}

// Subscribe registers a new subscriber. Only events posted after the call
// are delivered to it.
func (e *EventStream) Subscribe() *EventsSubscription {
	caller := "unknown"
	if fr := log.Callstack(1); len(fr) > 0 {
		caller = fr[0].String()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &EventsSubscription{stream: e, next: len(e.events), caller: caller}
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes the subscription from its stream; it must not be
// used afterward.
func (s *EventsSubscription) Unsubscribe() {
	e := s.stream
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if i := slices.Index(e.subs, s); i == -1 {
		e.lg.Errorf("%s: unsubscribing unknown subscription", s.caller)
	} else {
		e.subs = slices.Delete(e.subs, i, i+1)
	}
	e.compact()
	s.stream = nil
}

// Post adds an event to the stream.
func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))
	if len(e.subs) == 0 {
		return
	}

	e.events = append(e.events, event)
	if len(e.events) > longStream && !e.warnedLong {
		e.lg.Warn("Long EventStream", slog.Int("length", len(e.events)), e.subscriptionsAttr())
		e.warnedLong = true
	}
}

// Get returns the events posted since the subscription's last call to
// Get.
func (s *EventsSubscription) Get() []Event {
	e := s.stream
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !slices.Contains(e.subs, s) {
		e.lg.Errorf("%s: Get from unknown subscription", s.caller)
		return nil
	}

	events := slices.Clone(e.events[s.next:])
	s.next = len(e.events)
	e.compact()

	return events
}

// compact drops events that every subscriber has seen, once they take up
// at least half of the stream's storage.
func (e *EventStream) compact() {
	if len(e.subs) == 0 {
		e.events = e.events[:0]
		e.warnedLong = false
		return
	}

	seen := slices.MinFunc(e.subs, func(a, b *EventsSubscription) int { return a.next - b.next }).next
	if seen <= cap(e.events)/2 {
		return
	}

	e.events = e.events[:copy(e.events, e.events[seen:])]
	for _, sub := range e.subs {
		sub.next -= seen
	}
	e.warnedLong = false
}

func (e *EventStream) subscriptionsAttr() slog.Attr {
	attrs := make([]slog.Attr, len(e.subs))
	for i, sub := range e.subs {
		attrs[i] = slog.Any(strconv.Itoa(i), sub.LogValue())
	}
	return slog.Attr{Key: "subscriptions", Value: slog.GroupValue(attrs...)}
}

func (e *EventStream) LogValue() slog.Value {
	e.mu.Lock()
	defer e.mu.Unlock()

	attrs := []slog.Attr{slog.Int("len", len(e.events)), slog.Int("cap", cap(e.events))}
	if n := len(e.events); n > 0 {
		attrs = append(attrs, slog.Any("last", e.events[n-1]))
	}
	attrs = append(attrs, e.subscriptionsAttr())
	return slog.GroupValue(attrs...)
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	PlayerMovedEvent EventType = iota
	PlayerPassedEvent
	DraculaMovedEvent
	DraculaHeldEvent
	TrapPlacedEvent
	TrapExpiredEvent
	AirportDestroyedEvent
	ProximityWarningEvent
	CommandRejectedEvent
	GameOverEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"PlayerMoved", "PlayerPassed", "DraculaMoved", "DraculaHeld",
		"TrapPlaced", "TrapExpired", "AirportDestroyed", "ProximityWarning",
		"CommandRejected", "GameOver"}[t]
}

type Event struct {
	Type EventType
	Turn int
	// Airport is the airport the event concerns; From is set for moves.
	Airport int
	From    int
	Ident   string
	Status  Status
	Message string
}

func (e Event) String() string {
	switch e.Type {
	case PlayerMovedEvent, DraculaMovedEvent:
		return fmt.Sprintf("turn %d %s: %d -> %d (%s)", e.Turn, e.Type, e.From, e.Airport, e.Ident)
	case GameOverEvent:
		return fmt.Sprintf("turn %d %s: %s", e.Turn, e.Type, e.Status)
	case CommandRejectedEvent:
		return fmt.Sprintf("turn %d %s: %s", e.Turn, e.Type, e.Message)
	default:
		return fmt.Sprintf("turn %d %s: %d (%s)", e.Turn, e.Type, e.Airport, e.Ident)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String()), slog.Int("turn", e.Turn)}
	if e.Ident != "" {
		attrs = append(attrs, slog.String("ident", e.Ident))
	}
	if e.Type == PlayerMovedEvent || e.Type == DraculaMovedEvent {
		attrs = append(attrs, slog.Int("from", e.From), slog.Int("to", e.Airport))
	}
	if e.Type == GameOverEvent {
		attrs = append(attrs, slog.String("status", e.Status.String()))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	return slog.GroupValue(attrs...)
}
