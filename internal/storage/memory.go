// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Memory is an in-process backend. Values are copied on the way in and out
// so callers never share buffers with the map.
type Memory struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed atomic.Bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

// Get retrieves a value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

// Put stores a value.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	m.items[key] = slices.Clone(value)
	m.mu.Unlock()
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Keys lists keys with the given prefix.
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close marks the backend closed.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

var _ Backend = (*Memory)(nil)
