// Package logging builds the process-wide slog logger.
//
// Output goes through tint, which renders slog records as compact coloured
// lines. Colour is switched off automatically when the destination is not a
// terminal (log files, docker logs) so the output stays grep-friendly.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a verbosity string (debug, info, warn, error) to a slog level.
// Matching is case-insensitive; "warning" is accepted as an alias for warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a logger writing to w at the given level.
//
// When w is an *os.File attached to a terminal the output is coloured
// (through go-colorable so Windows consoles work too); any other writer
// gets plain text.
func New(level slog.Level, w io.Writer) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
		if !noColor {
			w = colorable.NewColorable(f)
		}
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}))
}
