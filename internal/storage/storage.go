// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage provides the key/value persistence backends that hold the
// site content document, its backups and admin sessions.
package storage

import (
	"context"
	"strings"

	"github.com/olegiv/charity-cms/internal/util"
)

// Backend is a byte-oriented key/value store.
// All implementations must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources held by the backend.
	Close() error
}

// Watcher is implemented by backends that can report out-of-band changes to
// a key, for example an operator editing the JSON file by hand.
type Watcher interface {
	// Watch calls fn after key changes outside this process until ctx is done.
	Watch(ctx context.Context, key string, fn func()) error
}

// Error represents an error type for storage operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates the key does not exist.
	ErrNotFound Error = "key not found"

	// ErrClosed indicates the backend has been closed.
	ErrClosed Error = "storage closed"

	// ErrInvalidKey indicates a key that the backend cannot store.
	ErrInvalidKey Error = "invalid key"
)

// validKey rejects keys that would escape a directory or prefix. A valid
// key is its own base file name.
func validKey(key string) bool {
	base, err := util.SanitizeFilename(key)
	if err != nil || base != key {
		return false
	}
	return !strings.ContainsAny(key, "/\\\x00")
}
