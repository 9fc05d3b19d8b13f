// Beatmaprec - Beatmap Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beatmaprec

package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config is the logging section of the engine configuration (LOG_* keys).
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error, disabled.
	Level string

	// Format is json or console.
	Format string

	// Caller includes file:line in every entry.
	Caller bool

	// Timestamp adds a time field. On by default.
	Timestamp bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig is JSON at info level on stderr, the shape the engine ships with.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // package loggers are taken before config is loaded
func init() {
	initLogger(DefaultConfig())
}

// Init applies cfg to the process logger. Calling it again reconfigures
// in place.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

// initLogger must be called with mu held.
func initLogger(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	output := cfg.Output
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(output)
	if cfg.Timestamp {
		l = l.With().Timestamp().Logger()
	}
	if cfg.Caller {
		l = l.With().Caller().Logger()
	}
	log = l
}

// parseLevel maps LOG_LEVEL to a zerolog level. "warning" is accepted for
// warn; unknown names, empty and panic fall back to info.
func parseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	l, err := zerolog.ParseLevel(name)
	if err != nil || l == zerolog.NoLevel || l == zerolog.PanicLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns the process logger, the base every component logger
// is derived from.
func Logger() zerolog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	return l
}

// SetLogger replaces the process logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// With starts a child context on the process logger.
func With() zerolog.Context {
	return Logger().With()
}

// WithComponent returns a child logger tagged with component. Each
// engine part (metadata, sampler, ledger, supervisor) logs under its own.
//
//	cacheLogger := logging.WithComponent("metadata")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// Debug starts a debug event on the process logger.
func Debug() *zerolog.Event { return at(zerolog.DebugLevel) }

// Info starts an info event on the process logger.
func Info() *zerolog.Event { return at(zerolog.InfoLevel) }

// Warn starts a warn event on the process logger.
func Warn() *zerolog.Event { return at(zerolog.WarnLevel) }

// Error starts an error event on the process logger.
func Error() *zerolog.Event { return at(zerolog.ErrorLevel) }

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event {
	l := Logger()
	return l.Err(err)
}

func at(level zerolog.Level) *zerolog.Event {
	l := Logger()
	return l.WithLevel(level)
}

// NewTestLogger returns a JSON logger on w for asserting on log lines.
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
