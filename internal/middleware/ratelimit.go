// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
)

// RateLimiter limits requests per client IP. Public submission forms and
// the JSON API each get their own instance.
type RateLimiter struct {
	cache *limiterCache[string]
	// OnlyWrites exempts GET and HEAD requests when set.
	OnlyWrites bool
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{cache: newLimiterCache[string](rps, burst)}
}

// Allow reports whether ip may make another request.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.cache.get(ip).Allow()
}

// Prune drops all limiter state once more than maxSize clients are tracked.
func (rl *RateLimiter) Prune(maxSize int) bool {
	return rl.cache.clearIfExceeds(maxSize)
}

// Middleware answers over-limit requests with 429, as JSON on API routes
// and as plain text elsewhere.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.OnlyWrites && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r)
			if rl.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			if wantsJSON(r) {
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.")
				return
			}
			http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
		})
	}
}
