// Package logger owns the process-wide zerolog logger. Packages that are
// handed a logger should use it; the package-level helpers are for code
// that runs before or outside dependency wiring.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

var levels = map[LogLevel]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

type Config struct {
	Level LogLevel
	// Pretty switches to the console writer for local runs
	Pretty bool
	Output io.Writer
}

var base zerolog.Logger

// ParseLevel accepts any casing and "warning"; anything unknown is info.
func ParseLevel(level string) LogLevel {
	l := LogLevel(strings.ToLower(strings.TrimSpace(level)))
	if l == "warning" {
		return WarnLevel
	}
	if _, ok := levels[l]; ok {
		return l
	}
	return InfoLevel
}

// Configure replaces the process logger, including zerolog's global one,
// and returns it. Debug level adds caller locations.
func Configure(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, ok := levels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(out).With().Timestamp().Str("service", "placementhub")
	if level == zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	base = ctx.Logger()
	log.Logger = base
	return base
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

func Info() *zerolog.Event  { return base.Info() }
func Warn() *zerolog.Event  { return base.Warn() }
func Error() *zerolog.Event { return base.Error() }

func init() {
	Configure(Config{Level: InfoLevel, Pretty: true})
}
