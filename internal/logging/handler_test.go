// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

type counted struct{ level, category string }

func recorder() (*[]counted, CountFunc) {
	var got []counted
	return &got, func(level, category string) {
		got = append(got, counted{level, category})
	}
}

func TestCountingHandler_CountsWarnAndAbove(t *testing.T) {
	got, fn := recorder()
	logger := slog.New(NewCountingHandler(discardHandler{}, fn))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("backup failed")
	logger.Error("login failed", "user", "admin")

	if len(*got) != 2 {
		t.Fatalf("counted %d records, want 2", len(*got))
	}
	if (*got)[0] != (counted{"warn", CategoryStorage}) {
		t.Errorf("first = %+v", (*got)[0])
	}
	if (*got)[1] != (counted{"error", CategoryAuth}) {
		t.Errorf("second = %+v", (*got)[1])
	}
}

func TestCountingHandler_CategoryAttribute(t *testing.T) {
	got, fn := recorder()
	logger := slog.New(NewCountingHandler(discardHandler{}, fn))

	logger.Warn("something odd", "category", "custom")

	if len(*got) != 1 || (*got)[0].category != "custom" {
		t.Errorf("got %+v, want category custom", *got)
	}
}

func TestCountingHandler_InferCategory(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"session expired", CategoryAuth},
		{"text generation failed", CategoryGenerator},
		{"storage backend unreachable", CategoryStorage},
		{"content document is corrupt", CategoryContent},
		{"shutdown timed out", CategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			r := slog.NewRecord(time.Now(), slog.LevelWarn, tt.msg, 0)
			if got := category(r); got != tt.want {
				t.Errorf("category(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestCountingHandler_WithAttrsKeepsCounting(t *testing.T) {
	got, fn := recorder()
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewCountingHandler(inner, fn)).With("component", "scheduler").WithGroup("job")

	logger.Error("backup failed", "key", "x")

	if len(*got) != 1 {
		t.Fatalf("counted %d records, want 1", len(*got))
	}
	out := buf.String()
	if !strings.Contains(out, "component=scheduler") || !strings.Contains(out, "job.key=x") {
		t.Errorf("inner handler output = %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_Formats(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"text", Options{Format: "text"}, "msg=hello"},
		{"json", Options{Format: "json"}, `"msg":"hello"`},
		{"development", Options{Development: true}, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Output = &buf
			slog.New(NewHandler(tt.opts)).Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	got, fn := recorder()
	logger := New(Options{Level: "error", Output: &buf}, fn)

	logger.Warn("ignored")
	if buf.Len() != 0 {
		t.Errorf("warn written at error level: %q", buf.String())
	}
	if len(*got) != 0 {
		t.Errorf("counted %d filtered records, want 0", len(*got))
	}

	logger.Error("kept")
	if len(*got) != 1 {
		t.Errorf("counted %d, want 1", len(*got))
	}
}
