// Package logging builds the structured, colorized logger used by stackupctl.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level is a slog level accepted on the command line.
type Level slog.Level

const (
	// LevelDebug logs parser fallbacks, dropped legacy lines and host command output.
	LevelDebug Level = Level(slog.LevelDebug)
	// LevelInfo is the default level.
	LevelInfo Level = Level(slog.LevelInfo)
	// LevelWarn only reports problems.
	LevelWarn Level = Level(slog.LevelWarn)
	// LevelError only reports failures.
	LevelError Level = Level(slog.LevelError)
)

// String returns the lower-case level name.
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel converts a textual log level into a Level value. An empty value means info.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", value)
	}
}

// Options tunes NewLogger.
type Options struct {
	Level Level
	// NoColor disables ANSI colors, also implied by a non-empty NO_COLOR variable.
	NoColor bool
}

// NewLogger constructs a slog.Logger writing tint-formatted records to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      slog.Level(opts.Level),
		NoColor:    opts.NoColor || os.Getenv("NO_COLOR") != "",
		TimeFormat: time.TimeOnly,
	})

	return slog.New(handler)
}
