// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store owns the site content document. Every read decodes the full
// document from the backend and every write replaces it whole, followed by a
// content.changed notification.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/charity-cms/internal/hooks"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/storage"
)

// DefaultKey is the storage key of the content document.
const DefaultKey = "jati_foundation_db"

// TimestampLayout formats creation timestamps as UTC ISO 8601 with
// milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Error represents an error type for store operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCorrupt indicates the persisted document could not be decoded.
	ErrCorrupt Error = "content document is corrupt"

	// ErrUnknownCollection indicates a collection name that does not exist.
	ErrUnknownCollection Error = "unknown collection"

	// ErrMissingID indicates a record without an id.
	ErrMissingID Error = "record id is required"

	// ErrDuplicateID indicates a create with an id already in the collection.
	ErrDuplicateID Error = "record id already exists"

	// ErrInvalidAmount indicates a donation amount that is NaN or infinite.
	ErrInvalidAmount Error = "donation amount must be a finite number"
)

// Mutation edits a document in place and reports whether anything changed.
// A mutation that returns false causes no write and no notification.
type Mutation func(doc *model.SiteContent) bool

// Store reads and writes the content document.
type Store struct {
	backend storage.Backend
	key     string
	seed    model.SiteContent
	hooks   *hooks.Registry
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	// mu serialises read-mutate-write cycles within this process.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithSeed replaces the default seed document.
func WithSeed(doc model.SiteContent) Option {
	return func(s *Store) {
		doc.Normalize()
		s.seed = doc
	}
}

// WithHooks sets the registry that receives change notifications.
func WithHooks(r *hooks.Registry) Option {
	return func(s *Store) { s.hooks = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id generator for submissions.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a store over backend.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		seed:    DefaultSeed(),
		logger:  slog.Default(),
		now:     time.Now,
		newID:   NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hooks == nil {
		s.hooks = hooks.NewRegistry(s.logger)
	}
	return s
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Key returns the storage key of the document.
func (s *Store) Key() string { return s.key }

// Backend returns the underlying backend.
func (s *Store) Backend() storage.Backend { return s.backend }

// Hooks returns the notification registry.
func (s *Store) Hooks() *hooks.Registry { return s.hooks }

// Seed returns a copy of the seed document.
func (s *Store) Seed() model.SiteContent { return s.seed.Clone() }

// Timestamp returns the current time in TimestampLayout.
func (s *Store) Timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// Initialize writes the seed document when none exists. It never overwrites
// an existing document, corrupt or not, and reports whether it wrote.
func (s *Store) Initialize(ctx context.Context) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.backend.Get(ctx, s.key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("checking content document: %w", err)
	}

	if err := s.replace(ctx, s.seed.Clone()); err != nil {
		return false, fmt.Errorf("writing seed document: %w", err)
	}
	s.logger.Info("content document seeded", "key", s.key)
	return true, nil
}

// Snapshot returns the full current document. When nothing is persisted yet
// it returns a copy of the seed without writing it.
func (s *Store) Snapshot(ctx context.Context) (model.SiteContent, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return s.seed.Clone(), nil
	}
	if err != nil {
		return model.SiteContent{}, fmt.Errorf("reading content document: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (model.SiteContent, error) {
	var doc model.SiteContent
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.SiteContent{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	doc.Normalize()
	return doc, nil
}

// Replace writes doc as the whole document and notifies subscribers.
func (s *Store) Replace(ctx context.Context, doc model.SiteContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, doc)
}

// replace is the single write path. Callers hold s.mu.
func (s *Store) replace(ctx context.Context, doc model.SiteContent) error {
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding content document: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing content document: %w", err)
	}
	s.notify(ctx, hooks.Event{Hook: hooks.HookContentChanged, Key: s.key, Source: hooks.SourceWrite})
	return nil
}

// notify emits an event. Subscriber failures never fail the write.
func (s *Store) notify(ctx context.Context, ev hooks.Event) {
	if err := s.hooks.Emit(ctx, ev); err != nil {
		s.logger.Warn("change subscribers failed", "hook", ev.Hook, "error", err)
	}
}

// Mutate applies m to the current document and writes the result when m
// reports a change.
func (s *Store) Mutate(ctx context.Context, m Mutation) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	if !m(&doc) {
		return false, nil
	}
	if err := s.replace(ctx, doc); err != nil {
		return false, err
	}
	return true, nil
}

// Subscribe registers fn for content.changed notifications.
func (s *Store) Subscribe(name string, fn func(ctx context.Context)) (unsubscribe func()) {
	return s.hooks.Subscribe(hooks.HookContentChanged, name, func(ctx context.Context, _ hooks.Event) error {
		fn(ctx)
		return nil
	})
}

// Watch turns out-of-band edits of the document into content.changed
// notifications when the backend supports it. It reports whether watching
// started.
func (s *Store) Watch(ctx context.Context) (bool, error) {
	w, ok := s.backend.(storage.Watcher)
	if !ok {
		return false, nil
	}
	err := w.Watch(ctx, s.key, func() {
		s.notify(ctx, hooks.Event{Hook: hooks.HookContentChanged, Key: s.key, Source: hooks.SourceExternal})
	})
	if err != nil {
		return false, fmt.Errorf("watching content document: %w", err)
	}
	return true, nil
}

// Collection returns the named collection from the current document.
func (s *Store) Collection(ctx context.Context, name string) (any, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items, ok := model.Raw(&doc, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return items, nil
}

// Stats summarises the current document.
func (s *Store) Stats(ctx context.Context) (model.DashboardStats, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return model.DashboardStats{}, err
	}
	return doc.Dashboard(), nil
}

// Reset replaces the document with the seed.
func (s *Store) Reset(ctx context.Context) error {
	return s.Replace(ctx, s.seed.Clone())
}
