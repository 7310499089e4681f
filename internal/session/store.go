// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/charity-cms/internal/storage"
)

// KeyPrefix namespaces session entries in the backend.
const KeyPrefix = "session_"

// envelope is what gets written per session.
type envelope struct {
	Data   []byte    `json:"data"`
	Expiry time.Time `json:"expiry"`
}

// Store implements scs.Store over a storage.Backend.
type Store struct {
	backend storage.Backend
	now     func() time.Time
}

// NewStore returns a session store writing to backend.
func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

func key(token string) string { return KeyPrefix + token }

// FindCtx returns the session data for token. Expired sessions are
// reported as missing.
func (s *Store) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	raw, err := s.backend.Get(ctx, key(token))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading session: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("decoding session: %w", err)
	}
	if !s.now().Before(env.Expiry) {
		return nil, false, nil
	}
	return env.Data, true, nil
}

// CommitCtx stores b for token until expiry.
func (s *Store) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	raw, err := json.Marshal(envelope{Data: b, Expiry: expiry})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.backend.Put(ctx, key(token), raw); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// DeleteCtx removes the session. Deleting a missing session is not an error.
func (s *Store) DeleteCtx(ctx context.Context, token string) error {
	err := s.backend.Delete(ctx, key(token))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// AllCtx returns every live session keyed by token.
func (s *Store) AllCtx(ctx context.Context) (map[string][]byte, error) {
	keys, err := s.backend.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	sessions := make(map[string][]byte, len(keys))
	for _, k := range keys {
		token := strings.TrimPrefix(k, KeyPrefix)
		data, ok, err := s.FindCtx(ctx, token)
		if err != nil {
			return nil, err
		}
		if ok {
			sessions[token] = data
		}
	}
	return sessions, nil
}

// Find implements scs.Store.
func (s *Store) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

// Commit implements scs.Store.
func (s *Store) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

// Delete implements scs.Store.
func (s *Store) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// All implements scs.IterableStore.
func (s *Store) All() (map[string][]byte, error) {
	return s.AllCtx(context.Background())
}

// DeleteExpired removes sessions past their expiry and returns how many were
// removed. Undecodable entries are removed too.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	keys, err := s.backend.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}
	removed := 0
	for _, k := range keys {
		raw, err := s.backend.Get(ctx, k)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("reading session: %w", err)
		}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && s.now().Before(env.Expiry) {
			continue
		}
		if err := s.backend.Delete(ctx, k); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return removed, fmt.Errorf("deleting session: %w", err)
		}
		removed++
	}
	return removed, nil
}

var (
	_ scs.Store         = (*Store)(nil)
	_ scs.CtxStore      = (*Store)(nil)
	_ scs.IterableStore = (*Store)(nil)
)
