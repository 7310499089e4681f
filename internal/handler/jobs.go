// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/scheduler"
)

const redirectAdminJobs = redirectAdmin + "/jobs"

// JobsHandler shows the scheduled jobs and lets admins run or reschedule them.
type JobsHandler struct {
	registry       *scheduler.Registry
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(registry *scheduler.Registry, renderer *render.Renderer, sm *scs.SessionManager) *JobsHandler {
	return &JobsHandler{registry: registry, renderer: renderer, sessionManager: sm}
}

// JobView is a job formatted for display.
type JobView struct {
	Name            string
	Description     string
	DefaultSchedule string
	Schedule        string
	IsOverridden    bool
	LastRun         string
	LastError       string
	NextRun         string
}

// List handles GET /admin/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.registry.List()
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		lastRun := "-"
		if !job.LastRun.IsZero() {
			lastRun = job.LastRun.Format("2006-01-02 15:04:05")
		}
		nextRun := "-"
		if !job.NextRun.IsZero() {
			nextRun = job.NextRun.Format("2006-01-02 15:04:05")
		}
		views = append(views, JobView{
			Name:            job.Name,
			Description:     job.Description,
			DefaultSchedule: job.DefaultSchedule,
			Schedule:        job.Schedule,
			IsOverridden:    job.IsOverridden,
			LastRun:         lastRun,
			LastError:       job.LastError,
			NextRun:         nextRun,
		})
	}
	renderPage(w, r, h.renderer, http.StatusOK, "admin/jobs", pageData(r, h.sessionManager, "Scheduled Jobs", views))
}

// UpdateSchedule handles POST /admin/jobs/update.
func (h *JobsHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminJobs) {
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	schedule := strings.TrimSpace(r.FormValue("schedule"))
	if name == "" || schedule == "" {
		flashError(w, r, h.renderer, redirectAdminJobs, "Job name and schedule are required")
		return
	}

	if err := h.registry.UpdateSchedule(name, schedule); err != nil {
		slog.Error("failed to update schedule", "category", logging.CategorySystem, "error", err, "name", name)
		flashError(w, r, h.renderer, redirectAdminJobs, "Failed to update schedule: "+err.Error())
		return
	}
	slog.Info("scheduler job updated", "category", logging.CategorySystem,
		"name", name, "schedule", schedule, "updated_by", middleware.AdminUser(r))
	flashSuccess(w, r, h.renderer, redirectAdminJobs, "Schedule updated")
}

// ResetSchedule handles POST /admin/jobs/reset.
func (h *JobsHandler) ResetSchedule(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminJobs) {
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		flashError(w, r, h.renderer, redirectAdminJobs, "Job name is required")
		return
	}

	if err := h.registry.ResetSchedule(name); err != nil {
		slog.Error("failed to reset schedule", "category", logging.CategorySystem, "error", err, "name", name)
		flashError(w, r, h.renderer, redirectAdminJobs, "Failed to reset schedule: "+err.Error())
		return
	}
	slog.Info("scheduler job reset", "category", logging.CategorySystem,
		"name", name, "reset_by", middleware.AdminUser(r))
	flashSuccess(w, r, h.renderer, redirectAdminJobs, "Schedule reset to default")
}

// TriggerNow handles POST /admin/jobs/{name}/run.
func (h *JobsHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.registry.TriggerNow(r.Context(), name); err != nil {
		slog.Error("failed to run job", "category", logging.CategorySystem, "error", err, "name", name)
		flashError(w, r, h.renderer, redirectAdminJobs, "Job failed: "+err.Error())
		return
	}
	slog.Info("scheduler job triggered", "category", logging.CategorySystem,
		"name", name, "triggered_by", middleware.AdminUser(r))
	flashSuccess(w, r, h.renderer, redirectAdminJobs, "Job completed")
}
