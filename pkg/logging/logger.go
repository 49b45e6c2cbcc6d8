// Package logging builds the zerolog loggers used by sgraph.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const component = "sgraph"

// ParseLevel returns the level named by level, or info if the name is unknown.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger creates a human readable logger writing to w, normally stderr.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(writer).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// NewJSONLogger creates a JSON-formatted logger for machine consumption.
func NewJSONLogger(level string, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
