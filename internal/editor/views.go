// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"net/url"
	"strconv"
	"time"

	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/util"
)

// Generator actions referenced by Field.Generate.
const (
	GenerateProgramDescription = "program-description"
	GenerateBlogContent        = "blog-content"
	GenerateBlogImage          = "blog-image"
)

const dateLayout = "2006-01-02"

func categoryOptions() []string {
	out := make([]string, len(model.ProgramCategories))
	for i, c := range model.ProgramCategories {
		out[i] = string(c)
	}
	return out
}

// ProgramView edits programs.
type ProgramView struct{}

func (ProgramView) Name() string  { return "programs" }
func (ProgramView) Title() string { return "Program" }

func (ProgramView) New(id string) model.Program {
	return model.Program{ID: id, Category: model.CategoryEducation, Active: true}
}

func (ProgramView) Row(p model.Program) Row {
	status := "Inactive"
	if p.Active {
		status = "Active"
	}
	return Row{ID: p.ID, Title: p.Title, Subtitle: string(p.Category) + " • " + status, Thumbnail: p.Image}
}

func (ProgramView) Fields(p model.Program) []Field {
	return []Field{
		{Name: "title", Label: "Title", Kind: KindText, Value: p.Title, Required: true},
		{Name: "category", Label: "Category", Kind: KindSelect, Value: string(p.Category), Options: categoryOptions()},
		{Name: "image", Label: "Image URL", Kind: KindImage, Value: p.Image, Required: true},
		{Name: "shortDescription", Label: "Short Description", Kind: KindTextarea, Value: p.ShortDescription, Rows: 2, Required: true},
		{Name: "fullDescription", Label: "Full Description", Kind: KindTextarea, Value: p.FullDescription, Rows: 5, Required: true,
			Generate: GenerateProgramDescription},
		{Name: "beneficiaries", Label: "Beneficiaries", Kind: KindText, Value: p.Beneficiaries},
		{Name: "location", Label: "Location", Kind: KindText, Value: p.Location},
		{Name: "active", Label: "Active on site", Kind: KindCheckbox, Checked: p.Active},
	}
}

func (ProgramView) Decode(values url.Values, base model.Program) (model.Program, error) {
	p := base
	p.Title = text(values, "title", p.Title)
	p.Category = model.ProgramCategory(text(values, "category", string(p.Category)))
	p.Image = text(values, "image", p.Image)
	p.ShortDescription = text(values, "shortDescription", p.ShortDescription)
	p.FullDescription = text(values, "fullDescription", p.FullDescription)
	p.Beneficiaries = text(values, "beneficiaries", p.Beneficiaries)
	p.Location = text(values, "location", p.Location)
	p.Active = checkbox(values, "active")

	errs := FieldErrors{}
	errs.need("title", p.Title)
	errs.need("image", p.Image)
	errs.need("shortDescription", p.ShortDescription)
	errs.need("fullDescription", p.FullDescription)
	if !p.Category.Valid() {
		errs["category"] = "Choose one of the listed categories."
	}
	return p, errs.errOrNil()
}

// EventView edits events.
type EventView struct{}

func (EventView) Name() string  { return "events" }
func (EventView) Title() string { return "Event" }

func (EventView) New(id string) model.Event { return model.Event{ID: id} }

func (EventView) Row(e model.Event) Row {
	return Row{ID: e.ID, Title: e.Title, Subtitle: e.Date + " • " + e.Location, Thumbnail: e.Image}
}

func (EventView) Fields(e model.Event) []Field {
	return []Field{
		{Name: "title", Label: "Title", Kind: KindText, Value: e.Title, Required: true},
		{Name: "date", Label: "Date", Kind: KindDate, Value: e.Date, Required: true},
		{Name: "location", Label: "Location", Kind: KindText, Value: e.Location, Required: true},
		{Name: "image", Label: "Image URL", Kind: KindImage, Value: e.Image},
		{Name: "shortDescription", Label: "Description", Kind: KindTextarea, Value: e.ShortDescription, Rows: 3},
		{Name: "fullDescription", Label: "Full Description", Kind: KindTextarea, Value: e.FullDescription, Rows: 5},
	}
}

func (EventView) Decode(values url.Values, base model.Event) (model.Event, error) {
	e := base
	e.Title = text(values, "title", e.Title)
	e.Date = text(values, "date", e.Date)
	e.Location = text(values, "location", e.Location)
	e.Image = text(values, "image", e.Image)
	e.ShortDescription = text(values, "shortDescription", e.ShortDescription)
	e.FullDescription = text(values, "fullDescription", e.FullDescription)

	errs := FieldErrors{}
	errs.need("title", e.Title)
	errs.need("date", e.Date)
	errs.need("location", e.Location)
	if _, ok := errs["date"]; !ok {
		if _, err := time.Parse(dateLayout, e.Date); err != nil {
			errs["date"] = "Use the YYYY-MM-DD format."
		}
	}
	return e, errs.errOrNil()
}

// BlogView edits blog posts. Now dates new posts.
type BlogView struct {
	Now func() time.Time
}

func (BlogView) Name() string  { return "blog" }
func (BlogView) Title() string { return "Blog Post" }

func (v BlogView) New(id string) model.BlogPost {
	return model.BlogPost{ID: id, Date: now(v.Now).Format(dateLayout), Author: "Admin"}
}

func (BlogView) Row(b model.BlogPost) Row {
	return Row{ID: b.ID, Title: b.Title, Subtitle: b.Date + " • by " + b.Author, Thumbnail: b.Image}
}

func (BlogView) Fields(b model.BlogPost) []Field {
	return []Field{
		{Name: "title", Label: "Title", Kind: KindText, Value: b.Title, Required: true},
		{Name: "slug", Label: "Slug", Kind: KindText, Value: b.Slug, Help: "Left empty, it is derived from the title."},
		{Name: "date", Label: "Date", Kind: KindDate, Value: b.Date, Required: true},
		{Name: "author", Label: "Author", Kind: KindText, Value: b.Author, Required: true},
		{Name: "image", Label: "Featured Image", Kind: KindImage, Value: b.Image, Generate: GenerateBlogImage,
			Placeholder: "Paste image URL (https://...)",
			Help:        "Supported: External URL, File Upload (Max 500KB), or AI Generation."},
		{Name: "imageAlt", Label: "Image Alt Text (Accessibility)", Kind: KindText, Value: b.ImageAlt,
			Placeholder: "Describe the image for screen readers"},
		{Name: "excerpt", Label: "Excerpt", Kind: KindTextarea, Value: b.Excerpt, Rows: 2, Required: true},
		{Name: "content", Label: "Full Content", Kind: KindTextarea, Value: b.Content, Rows: 8, Required: true,
			Generate: GenerateBlogContent, Help: "Markdown is supported."},
	}
}

func (BlogView) Decode(values url.Values, base model.BlogPost) (model.BlogPost, error) {
	b := base
	b.Title = text(values, "title", b.Title)
	b.Slug = text(values, "slug", b.Slug)
	b.Date = text(values, "date", b.Date)
	b.Author = text(values, "author", b.Author)
	b.Image = text(values, "image", b.Image)
	b.ImageAlt = text(values, "imageAlt", b.ImageAlt)
	b.Excerpt = text(values, "excerpt", b.Excerpt)
	b.Content = text(values, "content", b.Content)
	if b.Slug == "" {
		b.Slug = util.Slugify(b.Title)
	}

	errs := FieldErrors{}
	errs.need("title", b.Title)
	errs.need("date", b.Date)
	errs.need("author", b.Author)
	errs.need("excerpt", b.Excerpt)
	errs.need("content", b.Content)
	if b.Slug != "" && !util.IsValidSlug(b.Slug) {
		errs["slug"] = "Use lowercase letters, digits and single hyphens."
	}
	return b, errs.errOrNil()
}

// GalleryView edits gallery items.
type GalleryView struct{}

func (GalleryView) Name() string  { return "gallery" }
func (GalleryView) Title() string { return "Gallery Item" }

func (GalleryView) New(id string) model.GalleryItem {
	return model.GalleryItem{ID: id, Category: "General"}
}

func (GalleryView) Row(g model.GalleryItem) Row {
	return Row{ID: g.ID, Title: g.Caption, Badge: g.Category, Thumbnail: g.ImageURL}
}

func (GalleryView) Fields(g model.GalleryItem) []Field {
	return []Field{
		{Name: "imageUrl", Label: "Photo", Kind: KindImage, Value: g.ImageURL, Required: true,
			Placeholder: "Paste image URL (https://...)"},
		{Name: "caption", Label: "Caption", Kind: KindText, Value: g.Caption, Required: true,
			Placeholder: "Short description of the photo"},
		{Name: "category", Label: "Category", Kind: KindSelect, Value: g.Category, Options: model.GalleryCategories},
	}
}

func (GalleryView) Decode(values url.Values, base model.GalleryItem) (model.GalleryItem, error) {
	g := base
	g.ImageURL = text(values, "imageUrl", g.ImageURL)
	g.Caption = text(values, "caption", g.Caption)
	g.Category = text(values, "category", g.Category)

	errs := FieldErrors{}
	errs.need("imageUrl", g.ImageURL)
	errs.need("caption", g.Caption)
	if !model.ValidGalleryCategory(g.Category) {
		errs["category"] = "Choose one of the listed categories."
	}
	return g, errs.errOrNil()
}

// ReportView edits transparency reports. Now supplies the default year.
type ReportView struct {
	Now func() time.Time
}

func (ReportView) Name() string  { return "reports" }
func (ReportView) Title() string { return "Report" }

func (v ReportView) New(id string) model.Report {
	return model.Report{ID: id, Year: strconv.Itoa(now(v.Now).Year())}
}

func (ReportView) Row(r model.Report) Row {
	return Row{ID: r.ID, Title: r.Title, Subtitle: r.Year + " • " + r.Description}
}

func (ReportView) Fields(r model.Report) []Field {
	return []Field{
		{Name: "title", Label: "Title", Kind: KindText, Value: r.Title, Required: true},
		{Name: "year", Label: "Year", Kind: KindText, Value: r.Year, Required: true},
		{Name: "fileUrl", Label: "Document (PDF)", Kind: KindFile, Value: r.FileURL, Placeholder: "Paste PDF URL"},
		{Name: "description", Label: "Description", Kind: KindText, Value: r.Description, Required: true},
	}
}

func (ReportView) Decode(values url.Values, base model.Report) (model.Report, error) {
	r := base
	r.Title = text(values, "title", r.Title)
	r.Year = text(values, "year", r.Year)
	r.FileURL = text(values, "fileUrl", r.FileURL)
	r.Description = text(values, "description", r.Description)

	errs := FieldErrors{}
	errs.need("title", r.Title)
	errs.need("year", r.Year)
	errs.need("description", r.Description)
	if _, ok := errs["year"]; !ok {
		if y, err := strconv.Atoi(r.Year); err != nil || y < 1900 || y > 9999 {
			errs["year"] = "Enter a four digit year."
		}
	}
	return r, errs.errOrNil()
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}

var (
	_ View[model.Program]     = ProgramView{}
	_ View[model.Event]       = EventView{}
	_ View[model.BlogPost]    = BlogView{}
	_ View[model.GalleryItem] = GalleryView{}
	_ View[model.Report]      = ReportView{}
)
