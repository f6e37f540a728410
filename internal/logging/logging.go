// Package logging builds the process logger: colourised text in development,
// JSON in production.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const appName = "airdelta"

// Options configures New.
type Options struct {
	Level      slog.Level
	Production bool
	Env        string
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a slog level.
// An empty string is info.
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
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func New(w io.Writer, opts Options) *slog.Logger {
	if !opts.Production {
		h := tint.NewHandler(w, &tint.Options{
			Level:      opts.Level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With(
			"app", appName,
		)
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: opts.Level,
	})
	return slog.New(h).With(
		"app", appName,
		"env", opts.Env,
	)
}
