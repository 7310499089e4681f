// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers rather
// than a cookie, so no cookie options are needed.
type CSRFConfig struct {
	// AuthKey is a 32-byte key, normally the session secret.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host:port values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns the configuration for the given environment.
func DefaultCSRFConfig(authKey []byte, isDev bool, devAddr string) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		// The library expects host-only values, not full URLs.
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
		if devAddr != "" && devAddr != "localhost:8080" && devAddr != "127.0.0.1:8080" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, devAddr)
		}
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-site state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option
	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("CSRF validation failed",
		"category", "auth",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	if wantsJSON(r) {
		WriteAPIError(w, http.StatusForbidden, "csrf", "Cross-site request rejected")
		return
	}
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}
