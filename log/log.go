// log/log.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog.Logger that records the call stack with each message
// and remembers where its log file is, so that crash reports can be saved
// next to it.
type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

// New returns a Logger that writes JSON records to a rotating file in dir
// (or the user's config directory if dir is empty).
func New(level string, dir string) *Logger {
	if dir == "" {
		cd, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to find user config dir: %v\n", err)
			cd = "."
		}
		dir = filepath.Join(cd, "Drakula")
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "drakula.slog"),
		MaxSize:    32, // MB
		MaxBackups: 1,
	}
	if level == "debug" {
		// Debug logging of a long session is chatty.
		w.MaxSize = 256
	}

	l := NewWithWriter(level, w)
	l.LogFile, l.LogDir = w.Filename, dir
	l.logSystemInfo()
	return l
}

// ParseLevel returns the slog level for one of "debug", "info", "warn",
// or "error".
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%s: invalid log level", level)
	}
}

// NewWithWriter returns a Logger that writes JSON records to w; it is
// mostly useful for tests and batch runs that collect logs in memory.
func NewWithWriter(level string, w io.Writer) *Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})),
		Start:  time.Now(),
	}
}

func (l *Logger) logSystemInfo() {
	cpuModel := "unknown"
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		cpuModel = info[0].ModelName
	}
	l.Info("Starting up", slog.Time("start", l.Start),
		slog.Group("system",
			slog.String("os", runtime.GOOS),
			slog.String("arch", runtime.GOARCH),
			slog.Int("cpus", runtime.NumCPU()),
			slog.String("cpu", cpuModel)))

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	deps := make([]any, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		deps = append(deps, slog.String(dep.Path, dep.Version))
	}
	settings := make([]any, 0, len(bi.Settings))
	for _, s := range bi.Settings {
		settings = append(settings, slog.String(s.Key, s.Value))
	}
	l.Info("Build", slog.String("go", bi.GoVersion), slog.String("path", bi.Path),
		slog.Group("deps", deps...), slog.Group("settings", settings...))
}

// emit logs msg at the given level, adding the caller's call stack. A nil
// Logger discards debug and info messages; warnings and errors go to the
// default slog logger.
func (l *Logger) emit(level slog.Level, msg string, args []any) {
	sl := slog.Default()
	if l != nil {
		sl = l.Logger
	} else if level < slog.LevelWarn {
		return
	}

	ctx := context.Background()
	if !sl.Enabled(ctx, level) {
		return
	}
	// Skip emit and the Logger method that called it.
	args = append([]any{slog.Any("callstack", Callstack(2))}, args...)
	sl.Log(ctx, level, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(slog.LevelError, msg, args) }

// The f variants take printf-style arguments and log just the message.

func (l *Logger) Infof(format string, args ...any) {
	l.emit(slog.LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.emit(slog.LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.emit(slog.LevelError, fmt.Sprintf(format, args...), nil)
}

// With returns a Logger that includes the given attributes in each
// message.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	wl := *l
	wl.Logger = l.Logger.With(args...)
	return &wl
}

// CatchAndReportCrash should be deferred by main; if a panic is in flight
// it logs it, prints a report to stdout, and saves the report next to the
// log file. The recovered value is returned.
func (l *Logger) CatchAndReportCrash() any {
	err := recover()
	if err == nil {
		return nil
	}

	l.Errorf("Crashed: %v", err)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Crashed: %v\n", err)
	fmt.Fprintf(&sb, "Sys: %s/%s\n", runtime.GOARCH, runtime.GOOS)
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			fmt.Fprintf(&sb, "%s: %s\n", setting.Key, setting.Value)
		}
	}
	sb.Write(debug.Stack())
	report := sb.String()

	fmt.Println(report)

	if l != nil && l.LogDir != "" {
		fn := filepath.Join(l.LogDir, "crash-"+time.Now().Format("20060102-150405")+".txt")
		if werr := os.WriteFile(fn, []byte(report), 0o600); werr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fn, werr)
		}
	}

	return err
}
