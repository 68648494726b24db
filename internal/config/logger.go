package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production emits JSON for log
// shippers; development keeps the text handler with source locations so
// session state transitions are easy to follow on a terminal.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	var handler slog.Handler
	switch env {
	case "production":
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler).With(slog.String("app", "facegate"))
}
