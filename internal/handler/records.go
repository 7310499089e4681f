// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/charity-cms/internal/editor"
	"github.com/olegiv/charity-cms/internal/generator"
	"github.com/olegiv/charity-cms/internal/logging"
	"github.com/olegiv/charity-cms/internal/middleware"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/store"
)

const (
	// RouteSuffixGenerate is the suffix for generator actions.
	RouteSuffixGenerate = "/generate"

	// formFieldID carries the record id on both add and edit forms.
	formFieldID = "id"
	// formFieldAction names the generator action of a generate post.
	formFieldAction = "_action"
)

// Action fills one form field from a generator.
type Action[T model.Record] struct {
	// Name matches editor.Field.Generate.
	Name string
	// Field is the form field that receives the result.
	Field string
	// Label is the button text.
	Label string
	Run   func(ctx context.Context, g generator.Generator, form T) generator.Result
}

// RecordHandler serves the list, form and delete pages of one collection.
type RecordHandler[T model.Record] struct {
	store          *store.Store
	collection     model.Collection[T]
	view           editor.View[T]
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	generator      generator.Generator
	actions        []Action[T]
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler[T model.Record](st *store.Store, c model.Collection[T], view editor.View[T], renderer *render.Renderer, sm *scs.SessionManager) *RecordHandler[T] {
	return &RecordHandler[T]{
		store:          st,
		collection:     c,
		view:           view,
		renderer:       renderer,
		sessionManager: sm,
		generator:      generator.Disabled{},
	}
}

// WithGenerator enables the given actions on the form.
func (h *RecordHandler[T]) WithGenerator(g generator.Generator, actions ...Action[T]) *RecordHandler[T] {
	if g != nil {
		h.generator = g
	}
	h.actions = append(h.actions, actions...)
	return h
}

// Base returns the path the handler is mounted at.
func (h *RecordHandler[T]) Base() string {
	return redirectAdmin + "/" + h.view.Name()
}

// Mount registers the handler on the admin router under its collection name.
func (h *RecordHandler[T]) Mount(r chi.Router) {
	r.Route("/"+h.view.Name(), h.Register)
}

// Register adds the handler's routes to a router mounted at Base.
func (h *RecordHandler[T]) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get(RouteSuffixNew, h.New)
	r.Post(RouteSuffixGenerate, h.Generate)
	r.Get(RouteParamID, h.Edit)
	r.Post(RouteParamID, h.Update)
	r.Post(RouteParamID+RouteSuffixDelete, h.Delete)
}

// RecordListData holds data for the record list page.
type RecordListData struct {
	Name  string
	Title string
	Base  string
	Rows  []editor.Row
}

// FormField is an editor field with its validation message and generator
// button.
type FormField struct {
	editor.Field
	Error         string
	GenerateURL   string
	GenerateLabel string
}

// RecordFormData holds data for the record form page.
type RecordFormData struct {
	Name      string
	Title     string
	Base      string
	ID        string
	IsNew     bool
	Action    string
	Fields    []FormField
	AIEnabled bool
}

func (h *RecordHandler[T]) editor() *editor.Editor[T] {
	return editor.New[T](editor.StorePersister[T]{Store: h.store, Collection: h.collection}, h.view.New)
}

func (h *RecordHandler[T]) aiEnabled() bool {
	return len(h.actions) > 0 && h.generator.Name() != generator.ProviderNone
}

func (h *RecordHandler[T]) action(name string) (Action[T], bool) {
	for _, a := range h.actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action[T]{}, false
}

func (h *RecordHandler[T]) formData(form T, isNew bool, errs map[string]string) RecordFormData {
	data := RecordFormData{
		Name:      h.view.Name(),
		Title:     h.view.Title(),
		Base:      h.Base(),
		ID:        form.GetID(),
		IsNew:     isNew,
		Action:    h.Base(),
		AIEnabled: h.aiEnabled(),
	}
	if !isNew {
		data.Action = h.Base() + "/" + url.PathEscape(form.GetID())
	}
	for _, f := range h.view.Fields(form) {
		ff := FormField{Field: f, Error: errs[f.Name]}
		if a, ok := h.action(f.Generate); ok && data.AIEnabled {
			ff.GenerateURL = h.Base() + RouteSuffixGenerate
			ff.GenerateLabel = a.Label
		} else {
			ff.Generate = ""
		}
		data.Fields = append(data.Fields, ff)
	}
	return data
}

func (h *RecordHandler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, form T, isNew bool, errs map[string]string, flash, flashType string) {
	verb := "Edit"
	if isNew {
		verb = "Add"
	}
	td := pageData(r, h.sessionManager, verb+" "+h.view.Title(), h.formData(form, isNew, errs))
	td.Flash, td.FlashType = flash, flashType
	renderPage(w, r, h.renderer, status, "admin/form", td)
}

// List handles GET /admin/{collection}.
func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	ed := h.editor()
	if err := ed.Load(r.Context()); err != nil {
		logAndInternalError(w, "failed to list records", "collection", h.collection.Name, "error", err)
		return
	}
	items := ed.Items()
	rows := make([]editor.Row, len(items))
	for i, item := range items {
		rows[i] = h.view.Row(item)
	}
	data := RecordListData{Name: h.view.Name(), Title: h.view.Title(), Base: h.Base(), Rows: rows}
	renderPage(w, r, h.renderer, http.StatusOK, "admin/list", pageData(r, h.sessionManager, "Manage "+h.view.Title()+"s", data))
}

// New handles GET /admin/{collection}/new.
func (h *RecordHandler[T]) New(w http.ResponseWriter, r *http.Request) {
	form, err := h.editor().Add()
	if err != nil {
		logAndInternalError(w, "failed to open form", "collection", h.collection.Name, "error", err)
		return
	}
	h.renderForm(w, r, http.StatusOK, form, true, nil, "", "")
}

// Edit handles GET /admin/{collection}/{id}.
func (h *RecordHandler[T]) Edit(w http.ResponseWriter, r *http.Request) {
	ed := h.editor()
	if err := ed.Load(r.Context()); err != nil {
		logAndInternalError(w, "failed to load records", "collection", h.collection.Name, "error", err)
		return
	}
	form, err := ed.Edit(chi.URLParam(r, "id"))
	if errors.Is(err, editor.ErrNotFound) {
		flashError(w, r, h.renderer, h.Base(), h.view.Title()+" not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "failed to open form", "collection", h.collection.Name, "error", err)
		return
	}
	h.renderForm(w, r, http.StatusOK, form, false, nil, "", "")
}

// decode applies the submitted form, uploads included, on top of base.
func (h *RecordHandler[T]) decode(r *http.Request, base T) (T, map[string]string) {
	values, errs := applyUploads(r, h.view.Fields(base))
	form, err := h.view.Decode(values, base)
	var fe editor.FieldErrors
	if errors.As(err, &fe) {
		// Upload problems win over "required" for the same field.
		merged := maps.Clone(map[string]string(fe))
		maps.Copy(merged, errs)
		errs = merged
	} else if err != nil {
		errs["_form"] = err.Error()
	}
	return form, errs
}

// Create handles POST /admin/{collection}. The id comes from the add form.
// A post whose id is already stored, such as a resubmitted form, writes
// nothing; ErrDuplicateID covers the same id being created concurrently.
func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseRecordForm(w, r); err != nil {
		flashError(w, r, h.renderer, h.Base()+RouteSuffixNew, "Invalid form data")
		return
	}
	id := r.PostForm.Get(formFieldID)
	if _, err := uuid.Parse(id); err != nil {
		flashError(w, r, h.renderer, h.Base()+RouteSuffixNew, "Invalid record id")
		return
	}

	form, errs := h.decode(r, h.view.New(id))
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, true, errs, "Please correct the highlighted fields.", render.FlashError)
		return
	}

	ed := h.editor()
	if err := ed.Load(r.Context()); err != nil {
		logAndInternalError(w, "failed to load records", "collection", h.collection.Name, "error", err)
		return
	}
	if slices.ContainsFunc(ed.Items(), func(item T) bool { return item.GetID() == id }) {
		flashAndRedirect(w, r, h.renderer, h.Base(), h.view.Title()+" was already saved", render.FlashInfo)
		return
	}
	if err := ed.Open(form); err != nil {
		logAndInternalError(w, "failed to open form", "collection", h.collection.Name, "error", err)
		return
	}
	outcome, err := ed.Submit(r.Context())
	switch {
	case errors.Is(err, store.ErrDuplicateID):
		flashAndRedirect(w, r, h.renderer, h.Base(), h.view.Title()+" was already saved", render.FlashInfo)
	case err != nil:
		slog.Error("failed to save record", "category", logging.CategoryContent,
			"collection", h.collection.Name, "id", id, "error", err)
		h.renderForm(w, r, http.StatusInternalServerError, form, ed.IsNew(), nil, msgSaveFailed, render.FlashError)
	default:
		h.saved(w, r, outcome, id)
	}
}

// Update handles POST /admin/{collection}/{id}.
func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	editURL := h.Base() + "/" + url.PathEscape(id)
	if err := parseRecordForm(w, r); err != nil {
		flashError(w, r, h.renderer, editURL, "Invalid form data")
		return
	}

	ed := h.editor()
	if err := ed.Load(r.Context()); err != nil {
		logAndInternalError(w, "failed to load records", "collection", h.collection.Name, "error", err)
		return
	}
	current, err := ed.Edit(id)
	if errors.Is(err, editor.ErrNotFound) {
		flashError(w, r, h.renderer, h.Base(), h.view.Title()+" not found")
		return
	}
	if err != nil {
		logAndInternalError(w, "failed to open form", "collection", h.collection.Name, "error", err)
		return
	}

	form, errs := h.decode(r, current)
	if len(errs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, false, errs, "Please correct the highlighted fields.", render.FlashError)
		return
	}
	if err := ed.SetForm(form); err != nil {
		logAndInternalError(w, "failed to apply form", "collection", h.collection.Name, "error", err)
		return
	}
	outcome, err := ed.Submit(r.Context())
	if err != nil {
		slog.Error("failed to save record", "category", logging.CategoryContent,
			"collection", h.collection.Name, "id", id, "error", err)
		h.renderForm(w, r, http.StatusInternalServerError, form, false, nil, msgSaveFailed, render.FlashError)
		return
	}
	h.saved(w, r, outcome, id)
}

func (h *RecordHandler[T]) saved(w http.ResponseWriter, r *http.Request, outcome editor.Outcome, id string) {
	if outcome == editor.Missing {
		slog.Warn("record vanished before update", "category", logging.CategoryContent,
			"collection", h.collection.Name, "id", id)
		flashError(w, r, h.renderer, h.Base(), h.view.Title()+" was deleted while you were editing it")
		return
	}
	slog.Info("record "+outcome.String(), "category", logging.CategoryContent,
		"collection", h.collection.Name, "id", id, "by", middleware.AdminUser(r))
	flashSuccess(w, r, h.renderer, h.Base(), fmt.Sprintf("%s %s", h.view.Title(), outcome))
}

// Delete handles POST /admin/{collection}/{id}/delete.
func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, err := h.editor().Delete(r.Context(), id)
	switch {
	case err != nil:
		slog.Error("failed to delete record", "category", logging.CategoryContent,
			"collection", h.collection.Name, "id", id, "error", err)
		flashError(w, r, h.renderer, h.Base(), "Failed to delete "+strings.ToLower(h.view.Title()))
	case !found:
		flashError(w, r, h.renderer, h.Base(), h.view.Title()+" not found")
	default:
		slog.Info("record deleted", "category", logging.CategoryContent,
			"collection", h.collection.Name, "id", id, "by", middleware.AdminUser(r))
		flashSuccess(w, r, h.renderer, h.Base(), h.view.Title()+" deleted")
	}
}

// GenerateResponse is the JSON answer to a generate post.
type GenerateResponse struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Generate handles POST /admin/{collection}/generate. It runs the named
// action against the submitted form and shows the form again with the field
// filled in. Nothing is saved.
func (h *RecordHandler[T]) Generate(w http.ResponseWriter, r *http.Request) {
	asJSON := strings.Contains(r.Header.Get("Accept"), "application/json")
	if err := parseRecordForm(w, r); err != nil {
		if asJSON {
			middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_form", "Invalid form data")
			return
		}
		flashError(w, r, h.renderer, h.Base(), "Invalid form data")
		return
	}
	id := r.PostForm.Get(formFieldID)
	if id == "" {
		id = store.NewID()
	}

	base := h.view.New(id)
	isNew := true
	if existing, ok, err := store.Get(r.Context(), h.store, h.collection, id); err == nil && ok {
		base, isNew = existing, false
	}

	act, ok := h.action(r.PostForm.Get(formFieldAction))
	if !ok || !h.aiEnabled() {
		if asJSON {
			middleware.WriteAPIError(w, http.StatusNotFound, "unknown_action", "Content generation is not available")
			return
		}
		form, _ := h.decode(r, base)
		h.renderForm(w, r, http.StatusNotFound, form, isNew, nil, "Content generation is not available", render.FlashError)
		return
	}

	// Validation is deferred to save; the form may still be incomplete.
	form, _ := h.decode(r, base)
	res := act.Run(r.Context(), h.generator, form)
	if !res.OK() {
		slog.Warn("content generation failed", "category", logging.CategoryGenerator,
			"collection", h.collection.Name, "action", act.Name, "error", res.Err)
		if asJSON {
			middleware.WriteAPIError(w, http.StatusBadGateway, "generation_failed", res.Message())
			return
		}
		h.renderForm(w, r, http.StatusOK, form, isNew, nil, res.Message(), render.FlashError)
		return
	}

	value := res.Text
	if res.Kind == generator.KindImage {
		value = res.Image
	}
	if asJSON {
		writeJSON(w, http.StatusOK, GenerateResponse{Field: act.Field, Value: value})
		return
	}
	r.PostForm.Set(act.Field, value)
	if r.MultipartForm != nil {
		delete(r.MultipartForm.File, act.Field+uploadSuffix)
	}
	form, _ = h.decode(r, base)
	h.renderForm(w, r, http.StatusOK, form, isNew, nil, "Generated. Review the text, then save.", render.FlashSuccess)
}

func failed(kind generator.Kind, err error) generator.Result {
	return generator.Result{Kind: kind, Err: err}
}

// ProgramActions are the generator actions of the program form.
func ProgramActions() []Action[model.Program] {
	return []Action[model.Program]{{
		Name:  editor.GenerateProgramDescription,
		Field: "fullDescription",
		Label: "Auto-Generate with AI",
		Run: func(ctx context.Context, g generator.Generator, p model.Program) generator.Result {
			req, err := generator.ProgramDescription(p.Title, string(p.Category))
			if err != nil {
				return failed(generator.KindText, err)
			}
			return generator.Run(ctx, g, req)
		},
	}}
}

// BlogActions are the generator actions of the blog post form.
func BlogActions() []Action[model.BlogPost] {
	return []Action[model.BlogPost]{
		{
			Name:  editor.GenerateBlogContent,
			Field: "content",
			Label: "Auto-Generate with AI",
			Run: func(ctx context.Context, g generator.Generator, b model.BlogPost) generator.Result {
				req, err := generator.BlogPost(b.Title)
				if err != nil {
					return failed(generator.KindText, err)
				}
				return generator.Run(ctx, g, req)
			},
		},
		{
			Name:  editor.GenerateBlogImage,
			Field: "image",
			Label: "Generate AI",
			Run: func(ctx context.Context, g generator.Generator, b model.BlogPost) generator.Result {
				req, err := generator.BlogImage(b.Title, b.Excerpt)
				if err != nil {
					return failed(generator.KindImage, err)
				}
				return generator.Run(ctx, g, req)
			},
		},
	}
}
