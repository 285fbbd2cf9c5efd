// sim/character.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"slices"
	"strings"
	"unicode"
)

// Player is the pursuer.
type Player struct {
	Location int
	Traps    int
	Input    InputBuffer
}

// InputBuffer accumulates the airport code the player is typing. Text is
// uppercased as it's entered; whether it's a well-formed code is only
// checked when it's submitted.
type InputBuffer struct {
	text []rune
	max  int
}

func MakeInputBuffer(maxLength int) InputBuffer {
	return InputBuffer{max: maxLength}
}

// Append adds r to the buffer and returns true if it was accepted.
// Whitespace and control characters are ignored, as is anything past the
// length limit.
func (b *InputBuffer) Append(r rune) bool {
	if unicode.IsSpace(r) || !unicode.IsPrint(r) {
		return false
	}
	if b.max > 0 && len(b.text) >= b.max {
		return false
	}
	b.text = append(b.text, unicode.ToUpper(r))
	return true
}

// Backspace removes the last character, returning false if the buffer
// was already empty.
func (b *InputBuffer) Backspace() bool {
	if len(b.text) == 0 {
		return false
	}
	b.text = b.text[:len(b.text)-1]
	return true
}

func (b *InputBuffer) Clear() {
	b.text = b.text[:0]
}

// Clone returns a copy of the buffer that shares no memory with it.
func (b InputBuffer) Clone() InputBuffer {
	b.text = slices.Clone(b.text)
	return b
}

func (b InputBuffer) String() string {
	return string(b.text)
}

func (b InputBuffer) Len() int {
	return len(b.text)
}

// Take returns the buffer's contents and clears it.
func (b *InputBuffer) Take() string {
	s := b.String()
	b.Clear()
	return s
}

// ParseAirportCode normalizes a typed airport code, returning false if
// it's empty or has characters other than letters, digits, and hyphens.
func ParseAirportCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '-' {
			return "", false
		}
	}
	return s, true
}
