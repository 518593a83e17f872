// Package logging builds the zerolog loggers used by the CLI and server.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the named level. Pretty selects the
// human-readable console format; otherwise each event is one JSON line.
func New(w io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.DateTime}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Verbose lowers level to debug when v is set.
func Verbose(level string, v bool) string {
	if v {
		return zerolog.DebugLevel.String()
	}
	return level
}
