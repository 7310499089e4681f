// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// DefaultWatchDebounce is how long Watch waits for a burst of file system
// events to settle before reporting a change.
const DefaultWatchDebounce = 500 * time.Millisecond

// File stores each key as a JSON file in a directory. Writes go through a
// temporary file and a rename so readers never observe a partial document.
type File struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	closed   atomic.Bool

	mu      sync.Mutex
	written map[string][sha256.Size]byte
}

// FileOptions configures the file backend.
type FileOptions struct {
	// Dir is the directory holding one file per key. Created if missing.
	Dir string

	// Debounce overrides DefaultWatchDebounce.
	Debounce time.Duration

	// Logger receives watch errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewFile creates a file backend rooted at opts.Dir.
func NewFile(opts FileOptions) (*File, error) {
	if opts.Dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatchDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &File{
		dir:      opts.Dir,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		written:  make(map[string][sha256.Size]byte),
	}, nil
}

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

// Get reads a key's file.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces a key's file.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if !validKey(key) {
		return ErrInvalidKey
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", key, err)
	}

	// Record the hash before the rename so the watcher sees our own write.
	f.mu.Lock()
	f.written[key] = sha256.Sum256(value)
	f.mu.Unlock()

	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Delete removes a key's file.
func (f *File) Delete(_ context.Context, key string) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if !validKey(key) {
		return ErrInvalidKey
	}
	f.mu.Lock()
	delete(f.written, key)
	f.mu.Unlock()

	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix.
func (f *File) Keys(_ context.Context, prefix string) ([]string, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("listing storage directory: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close marks the backend closed. Running watches stop with their context.
func (f *File) Close() error {
	f.closed.Store(true)
	return nil
}

// Watch reports edits to key made by other processes. Events are debounced
// and a change whose content matches the last write from this process is
// ignored.
func (f *File) Watch(ctx context.Context, key string, fn func()) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	// Watch the directory since renames replace the file's inode.
	if err := w.Add(f.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	target := filepath.Clean(f.Path(key))
	go func() {
		defer func() { _ = w.Close() }()
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(f.debounce, func() {
					if ctx.Err() != nil {
						return
					}
					if f.externallyChanged(key) {
						f.logger.Info("content file changed on disk", "key", key)
						fn()
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.logger.Warn("file watcher error", "key", key, "error", err)
			}
		}
	}()
	return nil
}

// externallyChanged compares the file on disk with the last write made
// through this backend and remembers the new content.
func (f *File) externallyChanged(key string) bool {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)

	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.written[key]; ok && prev == sum {
		return false
	}
	f.written[key] = sum
	return true
}

var (
	_ Backend = (*File)(nil)
	_ Watcher = (*File)(nil)
)
