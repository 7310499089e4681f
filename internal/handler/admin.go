// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/store"
)

const (
	redirectAdminSettings   = redirectAdmin + "/settings"
	redirectAdminVolunteers = redirectAdmin + "/volunteers"
	redirectAdminInquiries  = redirectAdmin + "/inquiries"

	msgSettingsSaved = "Saved Successfully!"
)

// AdminHandler serves the dashboard, settings and submission lists.
type AdminHandler struct {
	store          *store.Store
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	aiEnabled      bool
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(st *store.Store, renderer *render.Renderer, sm *scs.SessionManager, aiEnabled bool) *AdminHandler {
	return &AdminHandler{store: st, renderer: renderer, sessionManager: sm, aiEnabled: aiEnabled}
}

// DashboardData holds data for the dashboard page.
type DashboardData struct {
	Stats     model.DashboardStats
	Donations []model.Donation
	Inquiries []model.ContactInquiry
	AIEnabled bool
}

// SettingsData holds data for the settings page.
type SettingsData struct {
	Settings model.SiteSettings
	Errors   map[string]string
}

// VolunteersData holds data for the volunteers page.
type VolunteersData struct {
	Volunteers []model.Volunteer
	Statuses   []model.VolunteerStatus
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	renderPage(w, r, h.renderer, status, name, pageData(r, h.sessionManager, title, data))
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read content", "error", err)
		return
	}
	data := DashboardData{
		Stats:     doc.Dashboard(),
		Donations: doc.Donations[:min(5, len(doc.Donations))],
		AIEnabled: h.aiEnabled,
	}
	for _, q := range doc.Inquiries {
		if q.Status == model.InquiryPending && len(data.Inquiries) < 5 {
			data.Inquiries = append(data.Inquiries, q)
		}
	}
	h.render(w, r, http.StatusOK, "admin/dashboard", "Dashboard Overview", data)
}

// Settings handles GET /admin/settings.
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read content", "error", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin/settings", "Site Settings", SettingsData{Settings: doc.Settings})
}

// SaveSettings handles POST /admin/settings.
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminSettings) {
		return
	}

	errs := map[string]string{}
	stat := func(name string) int {
		raw := strings.TrimSpace(r.FormValue(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs[name] = "Enter a whole number"
		}
		return n
	}
	settings := model.SiteSettings{
		HeroText: strings.TrimSpace(r.FormValue("heroText")),
		Mission:  strings.TrimSpace(r.FormValue("mission")),
		Vision:   strings.TrimSpace(r.FormValue("vision")),
		Stats: model.ImpactStats{
			Beneficiaries: stat("beneficiaries"),
			Villages:      stat("villages"),
			Volunteers:    stat("volunteers"),
			Meals:         stat("meals"),
		},
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "admin/settings", "Site Settings",
			SettingsData{Settings: settings, Errors: errs})
		return
	}

	if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
		slog.Error("failed to update settings", "category", logging.CategoryContent, "error", err)
		flashError(w, r, h.renderer, redirectAdminSettings, "Failed to save settings")
		return
	}
	slog.Info("settings updated", "category", logging.CategoryContent, "updated_by", middleware.AdminUser(r))
	flashSuccess(w, r, h.renderer, redirectAdminSettings, msgSettingsSaved)
}

// Donations handles GET /admin/donations.
func (h *AdminHandler) Donations(w http.ResponseWriter, r *http.Request) {
	items, err := store.List(r.Context(), h.store, model.Donations)
	if err != nil {
		logAndInternalError(w, "failed to list donations", "error", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin/donations", "Donation History", items)
}

// Volunteers handles GET /admin/volunteers.
func (h *AdminHandler) Volunteers(w http.ResponseWriter, r *http.Request) {
	items, err := store.List(r.Context(), h.store, model.Volunteers)
	if err != nil {
		logAndInternalError(w, "failed to list volunteers", "error", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin/volunteers", "Volunteer Applications",
		VolunteersData{Volunteers: items, Statuses: model.VolunteerStatuses})
}

// VolunteerStatus handles POST /admin/volunteers/{id}/status.
func (h *AdminHandler) VolunteerStatus(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminVolunteers) {
		return
	}
	status := model.VolunteerStatus(r.FormValue("status"))
	if !status.Valid() {
		flashError(w, r, h.renderer, redirectAdminVolunteers, "Unknown status")
		return
	}
	id := chi.URLParam(r, "id")
	found, err := h.store.SetVolunteerStatus(r.Context(), id, status)
	switch {
	case err != nil:
		slog.Error("failed to update volunteer", "category", logging.CategoryContent, "id", id, "error", err)
		flashError(w, r, h.renderer, redirectAdminVolunteers, "Failed to update volunteer")
	case !found:
		flashError(w, r, h.renderer, redirectAdminVolunteers, "Volunteer not found")
	default:
		flashSuccess(w, r, h.renderer, redirectAdminVolunteers, fmt.Sprintf("Status changed to %s", status))
	}
}

// Inquiries handles GET /admin/inquiries.
func (h *AdminHandler) Inquiries(w http.ResponseWriter, r *http.Request) {
	items, err := store.List(r.Context(), h.store, model.Inquiries)
	if err != nil {
		logAndInternalError(w, "failed to list inquiries", "error", err)
		return
	}
	h.render(w, r, http.StatusOK, "admin/inquiries", "Enquiries", items)
}

// InquiryStatus handles POST /admin/inquiries/{id}/status.
func (h *AdminHandler) InquiryStatus(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminInquiries) {
		return
	}
	status := model.InquiryStatus(r.FormValue("status"))
	if !status.Valid() {
		flashError(w, r, h.renderer, redirectAdminInquiries, "Unknown status")
		return
	}
	id := chi.URLParam(r, "id")
	found, err := h.store.SetInquiryStatus(r.Context(), id, status)
	switch {
	case err != nil:
		slog.Error("failed to update inquiry", "category", logging.CategoryContent, "id", id, "error", err)
		flashError(w, r, h.renderer, redirectAdminInquiries, "Failed to update enquiry")
	case !found:
		flashError(w, r, h.renderer, redirectAdminInquiries, "Enquiry not found")
	default:
		flashSuccess(w, r, h.renderer, redirectAdminInquiries, fmt.Sprintf("Enquiry marked %s", status))
	}
}

// Export handles GET /admin/export by streaming the whole document as JSON.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.store.Export(r.Context(), &buf); err != nil {
		logAndInternalError(w, "failed to export content", "category", logging.CategoryContent, "error", err)
		return
	}
	name := fmt.Sprintf("charity-content-%s.json", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set(HeaderContentType, "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = buf.WriteTo(w)
}
