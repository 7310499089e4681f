// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"

	"github.com/olegiv/charity-cms/internal/storage"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(storage.NewMemory(), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(storage.NewMemory(), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(storage.NewMemory(), true)

	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if _, ok := sm.Store.(*Store); !ok {
		t.Errorf("Store = %T, want *Store", sm.Store)
	}
}

func TestStore_CommitFindDelete(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s := NewStore(backend)

	if err := s.CommitCtx(ctx, "tok", []byte("payload"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CommitCtx: %v", err)
	}

	data, ok, err := s.FindCtx(ctx, "tok")
	if err != nil || !ok || string(data) != "payload" {
		t.Fatalf("FindCtx = %q, %v, %v", data, ok, err)
	}

	if _, err := backend.Get(ctx, KeyPrefix+"tok"); err != nil {
		t.Errorf("session not stored under %s: %v", KeyPrefix+"tok", err)
	}

	if err := s.DeleteCtx(ctx, "tok"); err != nil {
		t.Fatalf("DeleteCtx: %v", err)
	}
	if _, ok, _ := s.FindCtx(ctx, "tok"); ok {
		t.Error("session still found after delete")
	}
	if err := s.DeleteCtx(ctx, "tok"); err != nil {
		t.Errorf("deleting a missing session: %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.CommitCtx(ctx, "old", []byte("a"), now.Add(-time.Minute))
	_ = s.CommitCtx(ctx, "new", []byte("b"), now.Add(time.Minute))

	if _, ok, _ := s.FindCtx(ctx, "old"); ok {
		t.Error("expired session found")
	}

	all, err := s.AllCtx(ctx)
	if err != nil {
		t.Fatalf("AllCtx: %v", err)
	}
	if len(all) != 1 || string(all["new"]) != "b" {
		t.Errorf("AllCtx = %v, want only new", all)
	}

	n, err := s.DeleteExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired = %d, %v, want 1", n, err)
	}
	if _, ok, _ := s.FindCtx(ctx, "new"); !ok {
		t.Error("live session removed by cleanup")
	}
}

func TestStore_InvalidTokenIsMissing(t *testing.T) {
	s := NewStore(storage.NewMemory())
	if _, ok, err := s.Find("../x"); ok || err != nil {
		t.Errorf("Find(bad token) = %v, %v", ok, err)
	}
}

func TestManager_RoundTrip(t *testing.T) {
	backend := storage.NewMemory()
	sm := New(backend, true)

	set := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), KeyAuthenticated, true)
	}))
	rec := httptest.NewRecorder()
	set.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	keys, _ := backend.Keys(context.Background(), KeyPrefix)
	if len(keys) != 1 {
		t.Fatalf("backend sessions = %v, want 1", keys)
	}

	var authed bool
	get := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = sm.GetBool(r.Context(), KeyAuthenticated)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	get.ServeHTTP(httptest.NewRecorder(), req)

	if !authed {
		t.Error("authenticated flag not restored from backend")
	}
}

func TestNew_SQLiteKeepsSessionsInTable(t *testing.T) {
	ctx := context.Background()
	backend, err := storage.NewSQL(ctx, storage.DialectSQLite, filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatalf("NewSQL: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	sm := New(backend, true)
	st, ok := sm.Store.(*sqlite3store.SQLite3Store)
	if !ok {
		t.Fatalf("Store = %T, want *sqlite3store.SQLite3Store", sm.Store)
	}
	t.Cleanup(st.StopCleanup)

	if err := st.Commit("tok", []byte("payload"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, found, err := st.Find("tok")
	if err != nil || !found || string(data) != "payload" {
		t.Fatalf("Find = %q, %v, %v", data, found, err)
	}

	keys, err := backend.Keys(ctx, KeyPrefix)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("sessions leaked into kv_store: %v", keys)
	}
}
