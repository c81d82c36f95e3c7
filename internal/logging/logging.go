// Package logging installs a structured slog.Logger the same way
// swarmguard/libs/go/core/logging.Init(service) does: a JSON or text
// handler chosen by an environment variable, with level controlled by
// a second one, returning a logger tagged with the service name.
package logging

import (
	"log/slog"
	"os"
)

// Init builds the process-wide logger for service, honoring
// EPOCEIS_JSON_LOG (any non-empty value selects slog.JSONHandler over
// the default TextHandler) and EPOCEIS_LOG_LEVEL
// (debug/info/warn/error, default info).
func Init(service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level()}

	var handler slog.Handler
	if os.Getenv("EPOCEIS_JSON_LOG") != "" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

func level() slog.Level {
	switch os.Getenv("EPOCEIS_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
