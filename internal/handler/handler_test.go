// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/charity-cms/internal/auth"
	"github.com/olegiv/charity-cms/internal/editor"
	"github.com/olegiv/charity-cms/internal/generator"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/scheduler"
	"github.com/olegiv/charity-cms/internal/session"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
	"github.com/olegiv/charity-cms/internal/version"
	"github.com/olegiv/charity-cms/web"
)

const (
	testUser     = "admin"
	testPassword = "admin123"
)

// fakeGenerator answers every prompt with fixed values.
type fakeGenerator struct {
	text    string
	image   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string, _ generator.AspectRatio) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

type testEnv struct {
	store     *store.Store
	backend   *storage.Memory
	sm        *scs.SessionManager
	renderer  *render.Renderer
	scheduler *scheduler.Scheduler
	router    chi.Router
	cookies   []*http.Cookie
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires every handler onto a router backed by the seeded
// in-memory store. gen may be nil for a site without content generation.
func newTestEnv(t *testing.T, gen generator.Generator, lp *middleware.LoginProtection) *testEnv {
	t.Helper()

	backend := storage.NewMemory()
	st := store.New(backend, store.WithSeed(store.DefaultSeed()), store.WithLogger(quietLogger()))
	if _, err := st.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	sm := session.New(backend, true)
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub() error = %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}
	sched := scheduler.New(backend, quietLogger())

	provider := generator.ProviderNone
	if gen != nil {
		provider = gen.Name()
	}

	public := NewPublicHandler(st, renderer, sm)
	authH := NewAuthHandler(auth.Credentials{User: testUser, Password: testPassword}, renderer, sm, lp, true)
	admin := NewAdminHandler(st, renderer, sm, gen != nil)
	api := NewAPIHandler(st, sm)
	health := NewHealthHandler(st, sm, version.Info{Version: "test"}, provider)
	jobs := NewJobsHandler(sched.Registry(), renderer, sm)

	programs := NewRecordHandler(st, model.Programs, editor.View[model.Program](editor.ProgramView{}), renderer, sm).
		WithGenerator(gen, ProgramActions()...)
	blog := NewRecordHandler(st, model.BlogPosts, editor.View[model.BlogPost](editor.BlogView{}), renderer, sm).
		WithGenerator(gen, BlogActions()...)
	events := NewRecordHandler(st, model.Events, editor.View[model.Event](editor.EventView{}), renderer, sm)
	reports := NewRecordHandler(st, model.Reports, editor.View[model.Report](editor.ReportView{}), renderer, sm)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.NotFound(public.NotFound)

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
	r.Post("/donate", public.SubmitDonation)
	r.Get("/volunteer", public.Volunteer)
	r.Post("/volunteer", public.SubmitVolunteer)
	r.Get("/contact", public.Contact)
	r.Post("/contact", public.SubmitContact)

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/content", api.Content)
		r.Get("/content/{collection}", api.Collection)
		r.Get("/schema", api.Schema)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", authH.LoginForm)
		r.Post("/login", authH.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(sm))
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
			reports.Mount(r)
		})
	})

	return &testEnv{store: st, backend: backend, sm: sm, renderer: renderer, scheduler: sched, router: r}
}

// do serves one request. Admin requests carry the session cookies of
// signIn.
func (e *testEnv) do(t *testing.T, req *http.Request, asAdmin bool) *httptest.ResponseRecorder {
	t.Helper()
	if asAdmin {
		if e.cookies == nil {
			e.signIn(t)
		}
		for _, c := range e.cookies {
			req.AddCookie(c)
		}
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(t *testing.T, target string, asAdmin bool) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil), asAdmin)
}

func (e *testEnv) postForm(t *testing.T, target string, form url.Values, asAdmin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return e.do(t, req, asAdmin)
}

// follow requests the Location of a redirect with the admin session and
// returns the rendered page.
func (e *testEnv) follow(t *testing.T, rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rr.Code, rr.Body.String())
	}
	return e.get(t, rr.Header().Get("Location"), true)
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	form := url.Values{"username": {testUser}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rr.Code)
	}
	e.cookies = rr.Result().Cookies()
	if len(e.cookies) == 0 {
		t.Fatal("login did not set a session cookie")
	}
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("body does not contain %q", want)
	}
}

func assertNotContains(t *testing.T, body, unwanted string) {
	t.Helper()
	if strings.Contains(body, unwanted) {
		t.Errorf("body unexpectedly contains %q", unwanted)
	}
}
