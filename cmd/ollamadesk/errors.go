package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ollamadesk/ollamadesk/src/dbconn"
	"github.com/ollamadesk/ollamadesk/src/ollama"
	"github.com/ollamadesk/ollamadesk/src/storage"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitConfig      = 3
	ExitNotFound    = 4
	ExitNetwork     = 6
	ExitTimeout     = 7
	ExitInterrupted = 8
)

// ErrorHandler maps errors to exit codes and prints them for the user.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError logs the error and exits with the appropriate code.
func (h *ErrorHandler) HandleError(err error) {
	if err == nil {
		return
	}

	h.logger.Error("command failed", "error", err)
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	os.Exit(h.getExitCode(err))
}

func (h *ErrorHandler) getExitCode(err error) int {
	switch {
	case errors.Is(err, ollama.ErrNotRunning):
		return ExitNetwork
	case errors.Is(err, ollama.ErrTimeout):
		return ExitTimeout
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ollama.ErrModelNotFound),
		errors.Is(err, dbconn.ErrConnectionNotFound):
		return ExitNotFound
	case errors.Is(err, dbconn.ErrNotConfigured):
		return ExitConfig
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "configuration"), strings.Contains(errStr, "config"):
		return ExitConfig
	case strings.Contains(errStr, "network"), strings.Contains(errStr, "connection refused"):
		return ExitNetwork
	case strings.Contains(errStr, "timeout"):
		return ExitTimeout
	case strings.Contains(errStr, "interrupted"), strings.Contains(errStr, "canceled"):
		return ExitInterrupted
	case strings.Contains(errStr, "usage"), strings.Contains(errStr, "invalid"):
		return ExitUsage
	default:
		return ExitError
	}
}
