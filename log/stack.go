// log/stack.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const modulePath = "github.com/drakula-game/drakula/"

// maxFrames bounds the number of stack frames recorded with a message.
const maxFrames = 16

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

// Callstack returns the stack of the function that called it, skipping
// that many more of the innermost frames. It stops at main.main.
func Callstack(skip int) []StackFrame {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(2+skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	fr := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			break
		}

		fn := strings.TrimPrefix(frame.Function, modulePath)
		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(fn, "main."),
		})

		if !more || frame.Function == "main.main" {
			break
		}
	}
	return fr
}
