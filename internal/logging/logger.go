// Package logging configures zerolog for tasksync. Console output is used
// when stderr is a terminal, JSON otherwise.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var defaultLogger = New(Config{Level: "info", Format: "auto", Output: os.Stderr})

// Nop discards every event.
var Nop = zerolog.Nop()

// Config holds logger options.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Format is json, console or auto.
	Format string

	// Output defaults to stderr.
	Output io.Writer

	NoColor bool
}

// New builds a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "console"
		}
	}

	var w io.Writer = out
	if format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}

	level := ParseLevel(cfg.Level)
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
}

// OrDefault returns l, or the default logger when l is nil.
func OrDefault(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		return Default()
	}
	return l
}
