// util/error.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/drakula-game/drakula/log"
)

// ErrorLogger accumulates problems found while validating input data so
// that validation can keep going after the first one. Push and Pop
// maintain a description of what is being checked, which prefixes each
// message.
type ErrorLogger struct {
	context []string
	errors  []string
}

func (e *ErrorLogger) Push(s string) { e.context = append(e.context, s) }
func (e *ErrorLogger) Pop()          { e.context = e.context[:len(e.context)-1] }

func (e *ErrorLogger) CurrentDepth() int { return len(e.context) }

func (e *ErrorLogger) ErrorString(format string, args ...any) {
	e.add(fmt.Sprintf(format, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.add(err.Error())
}

func (e *ErrorLogger) add(msg string) {
	if len(e.context) > 0 {
		msg = strings.Join(e.context, " / ") + ": " + msg
	}
	e.errors = append(e.errors, msg)
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

// PrintErrors logs the errors and then writes them to stderr.
func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	for _, msg := range e.errors {
		lg.Error(msg)
	}
	fmt.Fprintln(os.Stderr, e.String())
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}
