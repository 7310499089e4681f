// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package hooks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := NewRegistry(newTestLogger())
	var order []string
	record := func(name string) Func {
		return func(context.Context, Event) error {
			order = append(order, name)
			return nil
		}
	}

	r.Register(HookContentChanged, Handler{Name: "last", Priority: 100, Fn: record("last")})
	r.Register(HookContentChanged, Handler{Name: "first", Priority: -10, Fn: record("first")})
	r.Register(HookContentChanged, Handler{Name: "middle", Fn: record("middle")})

	if err := r.Emit(context.Background(), Event{Hook: HookContentChanged}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if want := []string{"first", "middle", "last"}; !reflect.DeepEqual(order, want) {
		t.Errorf("call order = %v, want %v", order, want)
	}
}

func TestRegistryEmitContinuesAfterError(t *testing.T) {
	r := NewRegistry(newTestLogger())
	boom := errors.New("boom")
	called := false

	r.Subscribe(HookContentChanged, "failing", func(context.Context, Event) error { return boom })
	r.Subscribe(HookContentChanged, "after", func(context.Context, Event) error {
		called = true
		return nil
	})

	err := r.Emit(context.Background(), Event{Hook: HookContentChanged})
	if !errors.Is(err, boom) {
		t.Errorf("Emit() error = %v, want wrapped boom", err)
	}
	if !called {
		t.Error("handler after the failing one was not called")
	}
}

func TestRegistryEmitStampsTime(t *testing.T) {
	r := NewRegistry(newTestLogger())
	var got Event
	r.Subscribe(HookSubmissionReceived, "capture", func(_ context.Context, ev Event) error {
		got = ev
		return nil
	})

	if err := r.Emit(context.Background(), Event{Hook: HookSubmissionReceived, Kind: "donations", ID: "d1"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got.At.IsZero() {
		t.Error("event time not set")
	}
	if got.Kind != "donations" || got.ID != "d1" {
		t.Errorf("event = %+v", got)
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry(newTestLogger())
	calls := 0
	fn := func(context.Context, Event) error {
		calls++
		return nil
	}

	remove := r.Subscribe(HookContentChanged, "a", fn)
	r.Subscribe(HookContentChanged, "b", fn)
	if n := r.HandlerCount(HookContentChanged); n != 2 {
		t.Fatalf("HandlerCount() = %d, want 2", n)
	}

	remove()
	remove()
	if n := r.HandlerCount(HookContentChanged); n != 1 {
		t.Fatalf("HandlerCount() after remove = %d, want 1", n)
	}
	if got := r.HandlerNames()[HookContentChanged]; !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("HandlerNames() = %v, want [b]", got)
	}

	_ = r.Emit(context.Background(), Event{Hook: HookContentChanged})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRegistryEmitWithoutHandlers(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Emit(context.Background(), Event{Hook: "unknown"}); err != nil {
		t.Errorf("Emit() error = %v", err)
	}
}
