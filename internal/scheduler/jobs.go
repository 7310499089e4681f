// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/session"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
)

// Job names.
const (
	JobBackup         = "backup"
	JobSessionCleanup = "session_cleanup"
)

// Backup outcomes passed to the record func of BackupJob.
const (
	BackupOK      = "ok"
	BackupError   = "error"
	BackupSkipped = "skipped"
)

// BackupJob copies the content document to a timestamped key and keeps the
// newest keep backups. record may be nil.
func BackupJob(st *store.Store, schedule string, keep int, logger *slog.Logger, record func(outcome string)) Job {
	if record == nil {
		record = func(string) {}
	}
	return Job{
		Name:        JobBackup,
		Description: "Back up the content document and prune old backups",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			key, err := st.Backup(ctx)
			if errors.Is(err, storage.ErrNotFound) {
				record(BackupSkipped)
				logger.Debug("backup skipped, no content document yet", "category", logging.CategoryStorage)
				return nil
			}
			if err != nil {
				record(BackupError)
				return err
			}
			pruned, err := st.PruneBackups(ctx, keep)
			if err != nil {
				record(BackupError)
				return err
			}
			record(BackupOK)
			logger.Info("content backup written", "category", logging.CategoryStorage, "key", key, "pruned", pruned)
			return nil
		},
	}
}

// SessionCleanupJob deletes expired admin sessions.
func SessionCleanupJob(s *session.Store, logger *slog.Logger) Job {
	return Job{
		Name:        JobSessionCleanup,
		Description: "Delete expired admin sessions",
		Schedule:    "@every 15m",
		Run: func(ctx context.Context) error {
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Debug("expired sessions removed", "category", logging.CategoryAuth, "count", n)
			}
			return nil
		},
	}
}
