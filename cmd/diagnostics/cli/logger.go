// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for command operations.
// When stderr is a terminal it uses slog.TextHandler for people; when
// stderr is piped or redirected it uses slog.JSONHandler for machines.
// DIAGNOSTICS_LOG_LEVEL=debug lowers the threshold.
func NewCommandLogger() *slog.Logger {
	level := slog.LevelInfo
	if value := os.Getenv("DIAGNOSTICS_LOG_LEVEL"); value != "" {
		// An unknown level name keeps the default.
		_ = level.UnmarshalText([]byte(value))
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if IsTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}
