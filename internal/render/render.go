// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the site's html/template pages inside their
// layouts and carries flash messages across redirects.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
)

// Session keys for flash messages.
const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// layoutGroups maps a template directory to the layouts its pages use.
// Pages in "standalone" define the whole body themselves.
var layoutGroups = map[string][]string{
	"public":     {"layouts/base.html", "layouts/public.html"},
	"admin":      {"layouts/base.html", "layouts/admin.html"},
	"standalone": {"layouts/base.html"},
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	markdown       *Markdown
	logger         *slog.Logger
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Logger         *slog.Logger
}

// New parses every page template.
func New(cfg Config) (*Renderer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		markdown:       NewMarkdown(),
		logger:         logger,
		now:            time.Now,
	}
	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for dir, layouts := range layoutGroups {
		pages, err := templateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}
		for _, page := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{}, layouts...)
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}
	return nil
}

// templateFiles returns the .html files of dir. A missing dir is empty.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	Path        string
	Admin       bool // viewer is signed in
	AdminUser   string
}

// Render writes the page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus executes the page into a buffer and writes it with status.
// Nothing is written when execution fails.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = r.now().Year()
	data.Path = req.URL.Path
	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), flashTypeKey)
		}
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = FlashInfo
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a message shown by the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	r.sessionManager.Put(req.Context(), flashKey, message)
	r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
}

// Markdown returns the renderer's markdown converter.
func (r *Renderer) Markdown() *Markdown {
	return r.markdown
}
