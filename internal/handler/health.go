// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
	"github.com/olegiv/charity-cms/internal/version"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	healthCheckTimeout = 3 * time.Second
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store     *store.Store
	sm        *scs.SessionManager
	version   version.Info
	provider  string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. provider names the content
// generator in use.
func NewHealthHandler(st *store.Store, sm *scs.SessionManager, v version.Info, provider string) *HealthHandler {
	return &HealthHandler{store: st, sm: sm, version: v, provider: provider, startTime: time.Now()}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed response shown to admins.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. Returns minimal status for anonymous callers
// and the individual checks for admins.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]Check{
		"storage": h.checkStorage(ctx),
		"content": h.checkContent(ctx),
	}
	overall := statusHealthy
	for _, c := range checks {
		switch c.Status {
		case statusUnhealthy:
			overall = statusUnhealthy
		case statusDegraded:
			if overall == statusHealthy {
				overall = statusDegraded
			}
		}
	}

	code := http.StatusOK
	if overall == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	if h.sm == nil || !middleware.IsAdmin(h.sm, r) {
		writeJSON(w, code, HealthStatusPublic{Status: overall})
		return
	}

	checks["generator"] = Check{Status: statusHealthy, Message: h.provider}
	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. The service is ready once the
// content document can be read.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if c := h.checkContent(ctx); c.Status == statusUnhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkStorage measures a read of the content key.
func (h *HealthHandler) checkStorage(ctx context.Context) Check {
	start := time.Now()
	_, err := h.store.Backend().Get(ctx, h.store.Key())
	latency := time.Since(start).String()
	switch {
	case err == nil:
		return Check{Status: statusHealthy, Message: "Connected", Latency: latency}
	case errors.Is(err, storage.ErrNotFound):
		return Check{Status: statusDegraded, Message: "Content document not initialized", Latency: latency}
	default:
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
}

// checkContent decodes the document.
func (h *HealthHandler) checkContent(ctx context.Context) Check {
	doc, err := h.store.Snapshot(ctx)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		return Check{Status: statusUnhealthy, Message: "Content document is corrupt"}
	case err != nil:
		return Check{Status: statusUnhealthy, Message: err.Error()}
	}
	stats := doc.Dashboard()
	return Check{Status: statusHealthy, Message: fmt.Sprintf("%d programs, %d posts", stats.Programs, stats.BlogPosts)}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
