// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/olegiv/charity-cms/internal/storage"
)

// backupStampLayout sorts lexically in time order.
const backupStampLayout = "20060102-150405.000"

// BackupPrefix returns the key prefix shared by all backups of the document.
func (s *Store) BackupPrefix() string {
	return s.key + "_backup_"
}

// Export writes the current document as indented JSON.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// Import replaces the document with the JSON read from r. Input that does
// not decode or fails model.SiteContent.Validate leaves the stored document
// untouched.
func (s *Store) Import(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}
	doc, err := decode(data)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("importing content: %w", err)
	}
	return s.Replace(ctx, doc)
}

// Backup copies the persisted document to a timestamped key and returns it.
// Backups do not emit change notifications.
func (s *Store) Backup(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("no content document to back up: %w", err)
	}
	if err != nil {
		return "", fmt.Errorf("reading content document: %w", err)
	}
	key := s.BackupPrefix() + s.now().UTC().Format(backupStampLayout)
	if err := s.backend.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return key, nil
}

// Backups lists backup keys, oldest first.
func (s *Store) Backups(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx, s.BackupPrefix())
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// PruneBackups deletes all but the newest keep backups and returns how many
// were removed.
func (s *Store) PruneBackups(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	keys, err := s.Backups(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) <= keep {
		return 0, nil
	}
	stale := keys[:len(keys)-keep]
	for i, k := range stale {
		if err := s.backend.Delete(ctx, k); err != nil {
			return i, fmt.Errorf("deleting backup %s: %w", k, err)
		}
	}
	return len(stale), nil
}

// RestoreBackup replaces the document with a stored backup.
func (s *Store) RestoreBackup(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, s.BackupPrefix()) {
		return fmt.Errorf("%q is not a backup of %s", key, s.key)
	}
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", key, err)
	}
	doc, err := decode(data)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("restoring backup %s: %w", key, err)
	}
	return s.Replace(ctx, doc)
}
