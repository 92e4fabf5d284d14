// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects the slog handler.
type Format string

const (
	// FormatAuto uses text when the output is a terminal and JSON
	// otherwise.
	FormatAuto Format = "auto"
	// FormatText always uses slog.TextHandler.
	FormatText Format = "text"
	// FormatJSON always uses slog.JSONHandler.
	FormatJSON Format = "json"
)

// Options configures [New].
type Options struct {
	// Level is one of debug, info, warn, error. Empty means warn.
	Level string

	// Format is auto, text, or json. Empty means auto.
	Format Format
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", name)
	}
}

// NewWriter returns a logger writing to w. Auto format selects text
// only when w is an *os.File attached to a terminal.
func NewWriter(w io.Writer, options Options) (*slog.Logger, error) {
	level, err := ParseLevel(options.Level)
	if err != nil {
		return nil, err
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	format := options.Format
	if format == "" {
		format = FormatAuto
	}
	if format == FormatAuto {
		format = FormatJSON
		if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		return slog.New(slog.NewTextHandler(w, handlerOptions)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, handlerOptions)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, text, or json)", options.Format)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
