// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/charity-cms/internal/session"
)

// ContextKeyAdmin holds the signed-in admin user name.
const ContextKeyAdmin ContextKey = "admin"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin/login"

// IsAdmin reports whether the request's session is signed in.
func IsAdmin(sm *scs.SessionManager, r *http.Request) bool {
	return sm.GetBool(r.Context(), session.KeyAuthenticated)
}

// RequireAdmin gates admin routes. HTML requests are redirected to the login
// page with the original path in "next"; API requests get a JSON 401.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(sm, r) {
				if wantsJSON(r) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign in to the admin area first")
					return
				}
				target := LoginPath
				if r.Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			user := sm.GetString(r.Context(), session.KeyUser)
			ctx := context.WithValue(r.Context(), ContextKeyAdmin, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminUser returns the admin user name stored by RequireAdmin.
func AdminUser(r *http.Request) string {
	user, _ := r.Context().Value(ContextKeyAdmin).(string)
	return user
}

// SafeNext returns next when it is a local absolute path, else fallback.
func SafeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
