// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Categories assigned to counted records.
const (
	CategoryAuth      = "auth"
	CategoryContent   = "content"
	CategoryStorage   = "storage"
	CategoryGenerator = "generator"
	CategorySystem    = "system"
)

// CountFunc receives the level name and category of each counted record.
type CountFunc func(level, category string)

// CountingHandler is a slog.Handler that wraps another handler and reports
// WARN and ERROR records to a CountFunc.
type CountingHandler struct {
	inner slog.Handler
	count CountFunc
	level slog.Level // Minimum level to count (default: WARN)
}

// NewCountingHandler wraps inner. Records at WARN and above are counted.
func NewCountingHandler(inner slog.Handler, count CountFunc) *CountingHandler {
	return &CountingHandler{inner: inner, count: count, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *CountingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *CountingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level {
		h.count(levelName(r.Level), category(r))
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *CountingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CountingHandler{inner: h.inner.WithAttrs(attrs), count: h.count, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *CountingHandler) WithGroup(name string) slog.Handler {
	return &CountingHandler{inner: h.inner.WithGroup(name), count: h.count, level: h.level}
}

func levelName(l slog.Level) string {
	if l >= slog.LevelError {
		return "error"
	}
	return "warn"
}

// category uses an explicit "category" attribute when present and otherwise
// guesses from the message.
func category(r slog.Record) string {
	var c string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			c = a.Value.String()
			return false
		}
		return true
	})
	if c != "" {
		return c
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "auth") || strings.Contains(msg, "session"):
		return CategoryAuth
	case strings.Contains(msg, "generat") || strings.Contains(msg, "provider"):
		return CategoryGenerator
	case strings.Contains(msg, "storage") || strings.Contains(msg, "backend") || strings.Contains(msg, "backup"):
		return CategoryStorage
	case strings.Contains(msg, "content") || strings.Contains(msg, "document") || strings.Contains(msg, "item"):
		return CategoryContent
	default:
		return CategorySystem
	}
}
