// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Options controls handler construction.
type Options struct {
	Level       string // debug, info, warn, error
	Format      string // text or json
	Development bool
	Output      io.Writer // defaults to stderr
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// NewHandler returns the base handler for opts. Development output goes
// through tint, colored only when stderr is a terminal.
func NewHandler(opts Options) slog.Handler {
	level := ParseLevel(opts.Level)

	if opts.Development && opts.Format != "json" {
		w := opts.Output
		noColor := true
		if w == nil {
			w = colorable.NewColorable(os.Stderr)
			noColor = !isatty.IsTerminal(os.Stderr.Fd())
		}
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    noColor,
		})
	}

	w := opts.Output
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}
	if opts.Format == "json" {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

// New returns a logger over NewHandler(opts), optionally wrapped so WARN and
// ERROR records are counted.
func New(opts Options, count CountFunc) *slog.Logger {
	h := NewHandler(opts)
	if count != nil {
		h = NewCountingHandler(h, count)
	}
	return slog.New(h)
}
