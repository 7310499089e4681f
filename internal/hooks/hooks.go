// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package hooks is the process-wide notification bus. The store emits an
// event after every write. The live change stream and the metrics collectors
// subscribe by hook name.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Predefined hook names.
const (
	// HookContentChanged fires after the content document was written.
	HookContentChanged = "content.changed"

	// HookSubmissionReceived fires after a public form submission was stored.
	HookSubmissionReceived = "submission.received"
)

// Event sources.
const (
	SourceWrite    = "write"
	SourceExternal = "external"
)

// Event describes what happened. Payloads stay small: subscribers re-read
// the store when they need the content.
type Event struct {
	Hook   string
	Key    string    // storage key that changed
	Source string    // SourceWrite or SourceExternal
	Kind   string    // collection name for submissions
	ID     string    // record id for submissions
	At     time.Time // when the event was emitted
}

// Func handles an event.
type Func func(ctx context.Context, ev Event) error

// Handler wraps a Func with metadata.
type Handler struct {
	Name     string // Name of the handler for debugging
	Priority int    // Lower priority runs first (default: 0)
	Fn       Func

	id uint64
}

// Registry manages hook registration and dispatch.
type Registry struct {
	hooks  map[string][]Handler
	logger *slog.Logger
	nextID uint64
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		hooks:  make(map[string][]Handler),
		logger: logger,
	}
}

// Register adds a handler for hookName and returns a function that removes
// exactly that handler.
func (r *Registry) Register(hookName string, handler Handler) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	handler.id = r.nextID

	handlers := append(r.hooks[hookName], handler)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority < handlers[j].Priority
	})
	r.hooks[hookName] = handlers

	r.logger.Debug("hook registered",
		"hook", hookName,
		"handler", handler.Name,
		"priority", handler.Priority,
	)

	id := handler.id
	var once sync.Once
	return func() {
		once.Do(func() { r.remove(hookName, id) })
	}
}

// Subscribe is a convenience for Register with a default priority.
func (r *Registry) Subscribe(hookName, handlerName string, fn Func) (unregister func()) {
	return r.Register(hookName, Handler{Name: handlerName, Fn: fn})
}

func (r *Registry) remove(hookName string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := r.hooks[hookName]
	kept := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h.id != id {
			kept = append(kept, h)
		}
	}
	r.hooks[hookName] = kept

	r.logger.Debug("hook unregistered", "hook", hookName, "remaining", len(kept))
}

// Emit delivers ev to every handler of ev.Hook in priority order. A failing
// handler does not stop delivery to the rest; all failures are returned
// joined.
func (r *Registry) Emit(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	r.mu.RLock()
	handlers := append([]Handler(nil), r.hooks[ev.Hook]...)
	r.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	r.logger.Debug("emitting hook", "hook", ev.Hook, "handlers", len(handlers))

	var errs []error
	for _, h := range handlers {
		if err := h.Fn(ctx, ev); err != nil {
			r.logger.Error("hook handler error",
				"hook", ev.Hook,
				"handler", h.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("hook %s handler %s: %w", ev.Hook, h.Name, err))
		}
	}
	return errors.Join(errs...)
}

// HandlerCount returns the number of handlers registered for a hook.
func (r *Registry) HandlerCount(hookName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.hooks[hookName])
}

// HandlerNames lists handler names per hook in dispatch order.
func (r *Registry) HandlerNames() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.hooks))
	for name, handlers := range r.hooks {
		if len(handlers) == 0 {
			continue
		}
		names := make([]string, len(handlers))
		for i, h := range handlers {
			names[i] = h.Name
		}
		out[name] = names
	}
	return out
}
