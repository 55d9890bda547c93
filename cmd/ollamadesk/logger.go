package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"

	"github.com/ollamadesk/ollamadesk/src/config"
)

// createCLILogger creates a logger for CLI commands that writes to stderr.
func createCLILogger(logLevel string) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLogLevel(logLevel),
	}))
}

// createFileLogger writes JSON logs under the state directory, for running
// without a terminal attached. Falls back to discarding when the log
// directory cannot be created.
func createFileLogger(logLevel string) *slog.Logger {
	logDir := config.GetDefaultStoragePaths().LogPath
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	logFile := filepath.Join(logDir, "ollamadesk.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	}))
}

func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
