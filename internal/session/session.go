// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures admin sessions. Session data lives in the same
// storage backend as the content document.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/charity-cms/internal/storage"
)

// Session keys.
const (
	KeyAuthenticated = "authenticated"
	KeyUser          = "user"
)

// SQLiteCleanupInterval is how often expired rows leave the sessions table.
const SQLiteCleanupInterval = 30 * time.Minute

type sqliteBackend interface {
	DB() *sql.DB
	SQLite() bool
}

// New creates a session manager that persists sessions in backend. SQLite
// databases keep sessions in their own table.
func New(backend storage.Backend, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if sb, ok := backend.(sqliteBackend); ok && sb.SQLite() {
		sm.Store = sqlite3store.NewWithCleanupInterval(sb.DB(), SQLiteCleanupInterval)
	} else {
		sm.Store = NewStore(backend)
	}

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 2 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}
