package main

import (
	"io"
	"log/slog"
	"strings"

	"drivesync/internal/config"
)

// setupLogging installs the diagnostic logger. It writes to w (stderr in
// production) so it never interleaves with the progress lines on stdout.
func setupLogging(logConfig config.LoggingConfig, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(logConfig.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if strings.EqualFold(logConfig.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}
