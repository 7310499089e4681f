// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/charity-cms/internal/auth"
	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/session"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthHandler handles admin sign-in.
type AuthHandler struct {
	credentials     auth.Credentials
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	demoHint        bool
}

// NewAuthHandler creates a new AuthHandler. demoHint shows the default
// credentials on the login page and in errors, as in development.
func NewAuthHandler(creds auth.Credentials, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, demoHint bool) *AuthHandler {
	return &AuthHandler{
		credentials:     creds,
		renderer:        renderer,
		sessionManager:  sm,
		loginProtection: lp,
		demoHint:        demoHint,
	}
}

// LoginData holds data for the login page.
type LoginData struct {
	User     string
	Next     string
	Error    string
	DemoHint bool
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	data.DemoHint = h.demoHint
	renderPage(w, r, h.renderer, status, "standalone/login", pageData(r, h.sessionManager, "Admin Login", data))
}

// LoginForm renders the login page. Signed-in admins go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), redirectAdmin)
	if middleware.IsAdmin(h.sessionManager, r) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginData{Next: next})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: "Invalid form data"})
		return
	}

	user := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	data := LoginData{User: user, Next: middleware.SafeNext(r.FormValue("next"), redirectAdmin)}

	if user == "" || password == "" {
		data.Error = "Username and password are required"
		h.renderLogin(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(user); locked {
			slog.Warn("login attempt on locked account", "category", logging.CategoryAuth, "user", user)
			data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining))
			h.renderLogin(w, r, http.StatusTooManyRequests, data)
			return
		}
	}

	ok, err := h.credentials.Check(user, password)
	if err != nil {
		slog.Error("password check error", "category", logging.CategoryAuth, "error", err)
	}
	if !ok {
		slog.Warn("login failed", "category", logging.CategoryAuth, "user", user, "ip", r.RemoteAddr)
		data.Error = h.failedLoginMessage(user)
		h.renderLogin(w, r, http.StatusUnauthorized, data)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(user)
	}

	// Renew the token to prevent session fixation.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "failed to renew session token", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyAuthenticated, true)
	h.sessionManager.Put(r.Context(), session.KeyUser, user)

	slog.Info("admin logged in", "category", logging.CategoryAuth, "user", user)
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

func (h *AuthHandler) failedLoginMessage(user string) string {
	msg := msgInvalidCredentials
	if h.demoHint {
		msg += " (use admin / admin123)"
	}
	if h.loginProtection == nil {
		return msg
	}
	if locked, lockDuration := h.loginProtection.RecordFailedAttempt(user); locked {
		return fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration))
	}
	if remaining := h.loginProtection.RemainingAttempts(user); remaining > 0 && remaining <= 3 {
		return fmt.Sprintf("%s. %d attempts remaining.", msg, remaining)
	}
	return msg
}

// Logout ends the admin session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := h.sessionManager.GetString(r.Context(), session.KeyUser)
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}
	slog.Info("admin logged out", "category", logging.CategoryAuth, "user", user)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
