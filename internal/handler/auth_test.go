// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/olegiv/charity-cms/internal/middleware"
)

func TestAdmin_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rr := env.get(t, "/admin/programs", false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/admin/login?next=%2Fadmin%2Fprograms" {
		t.Errorf("Location = %q", got)
	}
}

func TestLogin(t *testing.T) {
	t.Run("form shows the demo hint", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rr := env.get(t, "/admin/login", false)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		assertContains(t, rr.Body.String(), "Admin Login")
	})

	t.Run("valid credentials go to next", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rr := env.postForm(t, "/admin/login", url.Values{
			"username": {testUser},
			"password": {testPassword},
			"next":     {"/admin/blog"},
		}, false)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rr.Code)
		}
		if got := rr.Header().Get("Location"); got != "/admin/blog" {
			t.Errorf("Location = %q, want /admin/blog", got)
		}
	})

	t.Run("foreign next is ignored", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rr := env.postForm(t, "/admin/login", url.Values{
			"username": {testUser},
			"password": {testPassword},
			"next":     {"//evil.example/"},
		}, false)
		if got := rr.Header().Get("Location"); got != "/admin" {
			t.Errorf("Location = %q, want /admin", got)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rr := env.postForm(t, "/admin/login", url.Values{"username": {testUser}, "password": {"nope"}}, false)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
		assertContains(t, rr.Body.String(), msgInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rr := env.postForm(t, "/admin/login", url.Values{"username": {testUser}}, false)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rr.Code)
		}
	})
}

func TestLogin_Lockout(t *testing.T) {
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(lp.Close)
	env := newTestEnv(t, nil, lp)

	wrong := url.Values{"username": {testUser}, "password": {"wrong"}}
	for range 2 {
		if rr := env.postForm(t, "/admin/login", wrong, false); rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
	}

	// Even the right password is refused while locked.
	rr := env.postForm(t, "/admin/login", url.Values{"username": {testUser}, "password": {testPassword}}, false)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	assertContains(t, rr.Body.String(), "Too many failed attempts")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if rr := env.get(t, "/admin", true); rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rr.Code)
	}

	rr := env.postForm(t, "/admin/logout", url.Values{}, true)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != middleware.LoginPath {
		t.Errorf("Location = %q", got)
	}

	if rr := env.get(t, "/admin", true); rr.Code != http.StatusSeeOther {
		t.Errorf("after logout status = %d, want 303", rr.Code)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30 seconds"},
		{time.Minute, "1 minute"},
		{15 * time.Minute, "15 minutes"},
		{time.Hour, "1 hour"},
		{3 * time.Hour, "3 hours"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
