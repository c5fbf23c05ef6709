// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// DebugEnv enables debug logging when set to any non-empty value.
const DebugEnv = "MINASIGN_DEBUG"

var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger at the given level
// ("debug", "info", "warn", "error"; empty means info).
// Setting MINASIGN_DEBUG forces debug regardless of level.
// Output goes to stderr so command results on stdout stay machine-readable.
func InitLogger(level string) {
	InitLoggerTo(os.Stderr, level)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(w io.Writer, level string) {
	lvl := ParseLogLevel(level)
	if os.Getenv(DebugEnv) != "" {
		lvl = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		// Remove timestamp and level for cleaner CLI output
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// ParseLogLevel maps a config value to a slog level. Unknown values map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message (only shown when debug logging is enabled)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
