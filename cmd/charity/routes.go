// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/charity-cms/internal/auth"
	"github.com/olegiv/charity-cms/internal/config"
	"github.com/olegiv/charity-cms/internal/editor"
	"github.com/olegiv/charity-cms/internal/generator"
	"github.com/olegiv/charity-cms/internal/handler"
	"github.com/olegiv/charity-cms/internal/metrics"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/scheduler"
	"github.com/olegiv/charity-cms/internal/store"
	"github.com/olegiv/charity-cms/internal/version"
	"github.com/olegiv/charity-cms/web"
)

const (
	requestTimeout = 30 * time.Second
	// Generation calls wait on a remote model.
	generateTimeout = 150 * time.Second
	staticMaxAge    = 31536000
)

// app carries the services the router is built from.
type app struct {
	cfg             *config.Config
	store           *store.Store
	sessionManager  *scs.SessionManager
	renderer        *render.Renderer
	generator       generator.Generator
	scheduler       *scheduler.Scheduler
	metrics         *metrics.Metrics
	loginProtection *middleware.LoginProtection
	credentials     auth.Credentials
	version         version.Info
	logger          *slog.Logger
}

func newRouter(a app) (http.Handler, error) {
	isDev := a.cfg.IsDevelopment()
	sm := a.sessionManager

	public := handler.NewPublicHandler(a.store, a.renderer, sm)
	authH := handler.NewAuthHandler(a.credentials, a.renderer, sm, a.loginProtection,
		isDev && a.credentials.PasswordHash == "")
	admin := handler.NewAdminHandler(a.store, a.renderer, sm, a.cfg.AIEnabled())
	api := handler.NewAPIHandler(a.store, sm)
	health := handler.NewHealthHandler(a.store, sm, a.version, a.generator.Name())
	jobs := handler.NewJobsHandler(a.scheduler.Registry(), a.renderer, sm)

	programs := handler.NewRecordHandler(a.store, model.Programs, editor.View[model.Program](editor.ProgramView{}), a.renderer, sm).
		WithGenerator(a.generator, handler.ProgramActions()...)
	blog := handler.NewRecordHandler(a.store, model.BlogPosts, editor.View[model.BlogPost](editor.BlogView{}), a.renderer, sm).
		WithGenerator(a.generator, handler.BlogActions()...)
	events := handler.NewRecordHandler(a.store, model.Events, editor.View[model.Event](editor.EventView{}), a.renderer, sm)
	gallery := handler.NewRecordHandler(a.store, model.Gallery, editor.View[model.GalleryItem](editor.GalleryView{}), a.renderer, sm)
	reports := handler.NewRecordHandler(a.store, model.Reports, editor.View[model.Report](editor.ReportView{}), a.renderer, sm)

	submitLimiter := middleware.NewRateLimiter(0.2, 5)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev)))
	r.Use(chimw.GetHead)

	// The change stream stays open, so it sits outside compression and the
	// request timeout.
	r.With(sm.LoadAndSave).Get("/api/changes", api.Changes)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.With(middleware.StaticCache(staticMaxAge)).
		Handle("/static/dist/*", http.StripPrefix("/static/dist/", http.FileServerFS(staticFS)))

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(sm.LoadAndSave)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(a.cfg.SessionSecret)[:32], isDev, a.cfg.ServerAddr())))

		r.NotFound(public.NotFound)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/", public.Home)
			r.Get("/about", public.About)
			r.Get("/programs", public.Programs)
			r.Get("/programs/{id}", public.Program)
			r.Get("/events", public.Events)
			r.Get("/events/{id}", public.Event)
			r.Get("/gallery", public.Gallery)
			r.Get("/reports", public.Reports)
			r.Get("/blog", public.Blog)
			r.Get("/blog/{slug}", public.Post)
			r.Get("/donate", public.Donate)
			r.Get("/volunteer", public.Volunteer)
			r.Get("/contact", public.Contact)

			r.Group(func(r chi.Router) {
				r.Use(submitLimiter.Middleware())
				r.Post("/donate", public.SubmitDonation)
				r.Post("/volunteer", public.SubmitVolunteer)
				r.Post("/contact", public.SubmitContact)
			})

			r.Route("/api", func(r chi.Router) {
				r.Get("/content", api.Content)
				r.Get("/content/{collection}", api.Collection)
				r.Get("/schema", api.Schema)
			})

			r.With(middleware.RequireAdmin(sm)).Handle("/metrics", a.metrics.Handler())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.With(middleware.Timeout(requestTimeout)).Get("/login", authH.LoginForm)
			r.With(middleware.Timeout(requestTimeout), a.loginProtection.Middleware()).Post("/login", authH.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(sm))
				r.Use(middleware.Timeout(generateTimeout))

				r.Get("/", admin.Dashboard)
				r.Post("/logout", authH.Logout)
				r.Get("/settings", admin.Settings)
				r.Post("/settings", admin.SaveSettings)
				r.Get("/donations", admin.Donations)
				r.Get("/volunteers", admin.Volunteers)
				r.Post("/volunteers/{id}/status", admin.VolunteerStatus)
				r.Get("/inquiries", admin.Inquiries)
				r.Post("/inquiries/{id}/status", admin.InquiryStatus)
				r.Get("/export", admin.Export)

				r.Get("/jobs", jobs.List)
				r.Post("/jobs/update", jobs.UpdateSchedule)
				r.Post("/jobs/reset", jobs.ResetSchedule)
				r.Post("/jobs/{name}/run", jobs.TriggerNow)

				programs.Mount(r)
				blog.Mount(r)
				events.Mount(r)
				gallery.Mount(r)
				reports.Mount(r)
			})
		})
	})

	return r, nil
}
