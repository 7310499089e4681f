// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/store"
)

// privateCollections hold personal data and are served to admins only.
var privateCollections = []string{model.Volunteers.Name, model.Donations.Name, model.Inquiries.Name}

const sseHeartbeat = 25 * time.Second

// APIHandler serves the read-only JSON API.
type APIHandler struct {
	store          *store.Store
	sessionManager *scs.SessionManager
	heartbeat      time.Duration
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(st *store.Store, sm *scs.SessionManager) *APIHandler {
	return &APIHandler{store: st, sessionManager: sm, heartbeat: sseHeartbeat}
}

// PublicContent is the document as visitors may see it.
type PublicContent struct {
	Programs  []model.Program     `json:"programs"`
	Events    []model.Event       `json:"events"`
	BlogPosts []model.BlogPost    `json:"blogPosts"`
	Gallery   []model.GalleryItem `json:"gallery"`
	Reports   []model.Report      `json:"reports"`
	Settings  model.SiteSettings  `json:"settings"`
}

func publicContent(doc model.SiteContent) PublicContent {
	pc := PublicContent{
		Programs:  make([]model.Program, 0, len(doc.Programs)),
		Events:    doc.Events,
		BlogPosts: doc.BlogPosts,
		Gallery:   doc.Gallery,
		Reports:   doc.Reports,
		Settings:  doc.Settings,
	}
	for _, p := range doc.Programs {
		if p.Active {
			pc.Programs = append(pc.Programs, p)
		}
	}
	return pc
}

func (h *APIHandler) isAdmin(r *http.Request) bool {
	return h.sessionManager != nil && middleware.IsAdmin(h.sessionManager, r)
}

// Content handles GET /api/content. Admins get the whole document.
func (h *APIHandler) Content(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	if h.isAdmin(r) {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	writeJSON(w, http.StatusOK, publicContent(doc))
}

// Collection handles GET /api/content/{collection}.
func (h *APIHandler) Collection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	if slices.Contains(privateCollections, name) && !h.isAdmin(r) {
		middleware.WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign in to the admin area first")
		return
	}

	if name == model.Programs.Name && !h.isAdmin(r) {
		doc, err := h.store.Snapshot(r.Context())
		if err != nil {
			h.storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, publicContent(doc).Programs)
		return
	}

	items, err := h.store.Collection(r.Context(), name)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Schema handles GET /api/schema.
func (h *APIHandler) Schema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, http.StatusOK, model.Schema())
}

func (h *APIHandler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnknownCollection):
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Unknown collection")
	case errors.Is(err, store.ErrCorrupt):
		slog.Error("content document is corrupt", "category", logging.CategoryStorage, "error", err)
		middleware.WriteAPIError(w, http.StatusServiceUnavailable, "corrupt", "Content is unavailable")
	default:
		slog.Error("failed to read content", "category", logging.CategoryStorage, "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, "internal", "Failed to read content")
	}
}

// Changes handles GET /api/changes, a server-sent event stream with one
// "changed" event per content change. Clients re-fetch what they show.
func (h *APIHandler) Changes(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	changed := make(chan struct{}, 1)
	unsubscribe := h.store.Subscribe(fmt.Sprintf("sse-%p", r), func(context.Context) {
		// Coalesce bursts; one pending event is enough.
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set(HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "retry: 5000\n\n")
	if err := rc.Flush(); err != nil {
		slog.Warn("event stream cannot flush", "category", logging.CategorySystem, "error", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			// The event has no payload. Clients re-read the content they show.
			if _, err := fmt.Fprint(w, "event: changed\ndata:\n\n"); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
