// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logutil configures the console logger shared by the CLI commands.
// Orchestrators log through it; library packages stay quiet and return errors.
package logutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the named level. Unknown or
// empty level names fall back to info. Timestamps are UTC.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

// WithComponent tags a child logger with a component name so the crawl,
// translate, and export subsystems are distinguishable in shared output.
func WithComponent(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
