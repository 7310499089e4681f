// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/render"
	"github.com/olegiv/charity-cms/internal/store"
)

const (
	homeProgramCount = 4
	homePostCount    = 3

	// honeypotField must stay empty; bots tend to fill it.
	honeypotField = "_website"

	msgSaveFailed = "Failed to save your submission. Please try again."
)

// VolunteerInterests are the areas offered on the volunteer form.
var VolunteerInterests = []string{
	"Teaching",
	"Fieldwork / Relief Distribution",
	"Social Media / Fundraising",
	"Medical Support",
}

// PurposeOption is one choice on the donation form.
type PurposeOption struct {
	Value string
	Label string
}

// DonationPurposeOptions label model.DonationPurposes for donors.
var DonationPurposeOptions = []PurposeOption{
	{Value: "General", Label: "General Fund (Where Needed Most)"},
	{Value: "Education", Label: "Education Support"},
	{Value: "Health", Label: "Health Camps"},
	{Value: "Women Empowerment", Label: "Women Empowerment"},
	{Value: "Disaster Relief", Label: "Disaster Relief"},
}

// PublicHandler serves the public site.
type PublicHandler struct {
	store          *store.Store
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(st *store.Store, renderer *render.Renderer, sm *scs.SessionManager) *PublicHandler {
	return &PublicHandler{store: st, renderer: renderer, sessionManager: sm}
}

// HomeData holds data for the home page.
type HomeData struct {
	Settings model.SiteSettings
	Programs []model.Program
	Posts    []model.BlogPost
}

// FormData carries a submitted public form back to the page.
type FormData struct {
	Values  map[string]string
	Errors  map[string]string
	Success bool
	Message string
}

// DonateData holds data for the donation page.
type DonateData struct {
	FormData
	Purposes []PurposeOption
	Donation model.Donation
}

// VolunteerData holds data for the volunteer page.
type VolunteerData struct {
	FormData
	Interests []string
}

// GalleryData holds data for the gallery page.
type GalleryData struct {
	Items      []model.GalleryItem
	Categories []string
	Category   string
}

func (h *PublicHandler) snapshot(w http.ResponseWriter, r *http.Request) (model.SiteContent, bool) {
	doc, err := h.store.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read content", "error", err)
		return model.SiteContent{}, false
	}
	return doc, true
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	renderPage(w, r, h.renderer, status, name, pageData(r, h.sessionManager, title, data))
}

func (h *PublicHandler) notFound(w http.ResponseWriter, r *http.Request, what string) {
	h.render(w, r, http.StatusNotFound, "public/notfound", "Not Found", what)
}

// NotFound renders the public 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Page")
}

func activePrograms(programs []model.Program) []model.Program {
	out := make([]model.Program, 0, len(programs))
	for _, p := range programs {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	programs := activePrograms(doc.Programs)
	posts := doc.BlogPosts
	data := HomeData{
		Settings: doc.Settings,
		Programs: programs[:min(homeProgramCount, len(programs))],
		Posts:    posts[:min(homePostCount, len(posts))],
	}
	h.render(w, r, http.StatusOK, "public/home", "Home", data)
}

// About handles GET /about.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "public/about", "About Us", doc.Settings)
}

// Programs handles GET /programs. Inactive programs are hidden.
func (h *PublicHandler) Programs(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "public/programs", "Our Programs", activePrograms(doc.Programs))
}

// Program handles GET /programs/{id}.
func (h *PublicHandler) Program(w http.ResponseWriter, r *http.Request) {
	p, found, err := store.Get(r.Context(), h.store, model.Programs, chi.URLParam(r, "id"))
	if err != nil {
		logAndInternalError(w, "failed to get program", "error", err)
		return
	}
	if !found || !p.Active {
		h.notFound(w, r, "Program")
		return
	}
	h.render(w, r, http.StatusOK, "public/program", p.Title, p)
}

// Events handles GET /events.
func (h *PublicHandler) Events(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "public/events", "Events", doc.Events)
}

// Event handles GET /events/{id}.
func (h *PublicHandler) Event(w http.ResponseWriter, r *http.Request) {
	e, found, err := store.Get(r.Context(), h.store, model.Events, chi.URLParam(r, "id"))
	if err != nil {
		logAndInternalError(w, "failed to get event", "error", err)
		return
	}
	if !found {
		h.notFound(w, r, "Event")
		return
	}
	h.render(w, r, http.StatusOK, "public/event", e.Title, e)
}

// Gallery handles GET /gallery with an optional ?category= filter.
func (h *PublicHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	data := GalleryData{Items: doc.Gallery, Categories: model.GalleryCategories}
	if c := r.URL.Query().Get("category"); model.ValidGalleryCategory(c) {
		data.Category = c
		data.Items = slices.DeleteFunc(slices.Clone(doc.Gallery), func(g model.GalleryItem) bool {
			return g.Category != c
		})
	}
	h.render(w, r, http.StatusOK, "public/gallery", "Photo Gallery", data)
}

// Reports handles GET /reports.
func (h *PublicHandler) Reports(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "public/reports", "Transparency & Reports", doc.Reports)
}

// Blog handles GET /blog.
func (h *PublicHandler) Blog(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "public/blog", "Our Blog", doc.BlogPosts)
}

// Post handles GET /blog/{slug}. Older links carry the post id instead.
func (h *PublicHandler) Post(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	ref := chi.URLParam(r, "slug")
	i := slices.IndexFunc(doc.BlogPosts, func(b model.BlogPost) bool {
		return b.Slug == ref || b.ID == ref
	})
	if i < 0 {
		h.notFound(w, r, "Post")
		return
	}
	post := doc.BlogPosts[i]
	h.render(w, r, http.StatusOK, "public/post", post.Title, post)
}

// Donate handles GET /donate.
func (h *PublicHandler) Donate(w http.ResponseWriter, r *http.Request) {
	data := DonateData{
		FormData: FormData{Values: map[string]string{"purpose": "General"}},
		Purposes: DonationPurposeOptions,
	}
	h.render(w, r, http.StatusOK, "public/donate", "Donate", data)
}

// SubmitDonation handles POST /donate.
func (h *PublicHandler) SubmitDonation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	data := DonateData{
		FormData: FormData{
			Values: formValues(r, "name", "email", "phone", "amount", "purpose"),
			Errors: map[string]string{},
		},
		Purposes: DonationPurposeOptions,
	}
	v := data.Values

	required(data.Errors, v, "name", "Full Name")
	required(data.Errors, v, "email", "Email")
	required(data.Errors, v, "phone", "Phone")
	checkEmail(data.Errors, v)
	amount, err := strconv.ParseFloat(v["amount"], 64)
	if err != nil || !model.ValidAmount(amount) || amount < 1 {
		data.Errors["amount"] = "Please enter an amount of at least ₹1"
	}
	if !slices.Contains(model.DonationPurposes, v["purpose"]) {
		v["purpose"] = "General"
	}

	if h.honeypot(r) {
		data.Success = true
		data.Donation = model.Donation{DonorName: v["name"], Amount: amount}
		h.render(w, r, http.StatusOK, "public/donate", "Donate", data)
		return
	}
	if len(data.Errors) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "public/donate", "Donate", data)
		return
	}

	d, err := h.store.AddDonation(r.Context(), model.DonationInput{
		DonorName: v["name"],
		Email:     v["email"],
		Phone:     v["phone"],
		Amount:    amount,
		Purpose:   v["purpose"],
	})
	if err != nil {
		data.Message = msgSaveFailed
		h.submissionFailed(w, r, "public/donate", "Donate", data, err)
		return
	}

	slog.Info("donation pledge recorded", "id", d.ID, "purpose", d.Purpose)
	data.Success = true
	data.Donation = d
	h.render(w, r, http.StatusOK, "public/donate", "Donate", data)
}

// Volunteer handles GET /volunteer.
func (h *PublicHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	data := VolunteerData{
		FormData:  FormData{Values: map[string]string{"interest": VolunteerInterests[0], "availability": "Weekends"}},
		Interests: VolunteerInterests,
	}
	h.render(w, r, http.StatusOK, "public/volunteer", "Volunteer", data)
}

// SubmitVolunteer handles POST /volunteer.
func (h *PublicHandler) SubmitVolunteer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	data := VolunteerData{
		FormData: FormData{
			Values: formValues(r, "name", "age", "phone", "city", "email", "interest", "availability"),
			Errors: map[string]string{},
		},
		Interests: VolunteerInterests,
	}
	v := data.Values

	required(data.Errors, v, "name", "Name")
	required(data.Errors, v, "phone", "Phone")
	required(data.Errors, v, "city", "City")
	required(data.Errors, v, "email", "Email")
	checkEmail(data.Errors, v)
	age, err := strconv.Atoi(v["age"])
	if err != nil || age < 1 || age > 120 {
		data.Errors["age"] = "Please enter a valid age"
	}
	if !slices.Contains(VolunteerInterests, v["interest"]) {
		data.Errors["interest"] = "Please choose an area of interest"
	}

	if h.honeypot(r) {
		data.Success = true
		h.render(w, r, http.StatusOK, "public/volunteer", "Volunteer", data)
		return
	}
	if len(data.Errors) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "public/volunteer", "Volunteer", data)
		return
	}

	vol, err := h.store.AddVolunteer(r.Context(), model.VolunteerInput{
		Name:         v["name"],
		Age:          age,
		Phone:        v["phone"],
		Email:        v["email"],
		City:         v["city"],
		Interest:     v["interest"],
		Availability: v["availability"],
	})
	if err != nil {
		data.Message = msgSaveFailed
		h.submissionFailed(w, r, "public/volunteer", "Volunteer", data, err)
		return
	}

	slog.Info("volunteer application recorded", "id", vol.ID)
	data.Success = true
	h.render(w, r, http.StatusOK, "public/volunteer", "Volunteer", data)
}

// Contact handles GET /contact.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "public/contact", "Contact", FormData{Values: map[string]string{}})
}

// SubmitContact handles POST /contact.
func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	data := FormData{
		Values: formValues(r, "name", "email", "phone", "message"),
		Errors: map[string]string{},
	}
	v := data.Values

	required(data.Errors, v, "name", "Your Name")
	required(data.Errors, v, "email", "Your Email")
	required(data.Errors, v, "message", "Message")
	checkEmail(data.Errors, v)

	if h.honeypot(r) {
		data.Success = true
		h.render(w, r, http.StatusOK, "public/contact", "Contact", data)
		return
	}
	if len(data.Errors) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "public/contact", "Contact", data)
		return
	}

	q, err := h.store.AddInquiry(r.Context(), model.InquiryInput{
		Name:    v["name"],
		Email:   v["email"],
		Phone:   v["phone"],
		Message: v["message"],
	})
	if err != nil {
		data.Message = msgSaveFailed
		h.submissionFailed(w, r, "public/contact", "Contact", data, err)
		return
	}

	slog.Info("contact inquiry recorded", "id", q.ID)
	data.Success = true
	h.render(w, r, http.StatusOK, "public/contact", "Contact", data)
}

// honeypot reports a filled trap field. Bots get a silent success page.
func (h *PublicHandler) honeypot(r *http.Request) bool {
	if r.FormValue(honeypotField) == "" {
		return false
	}
	slog.Info("honeypot triggered", "path", r.URL.Path, "ip", r.RemoteAddr)
	return true
}

// submissionFailed re-renders the form with the visitor's input kept.
func (h *PublicHandler) submissionFailed(w http.ResponseWriter, r *http.Request, name, title string, data any, err error) {
	slog.Error("failed to save submission", "path", r.URL.Path, "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	h.render(w, r, status, name, title, data)
}

func required(errs, values map[string]string, name, label string) {
	if values[name] == "" {
		errs[name] = label + " is required"
	}
}

func checkEmail(errs, values map[string]string) {
	if _, ok := errs["email"]; ok {
		return
	}
	if !isValidEmail(strings.TrimSpace(values["email"])) {
		errs["email"] = "Please enter a valid email address"
	}
}
