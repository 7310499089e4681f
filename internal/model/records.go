// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Record is implemented by every collection member.
type Record interface {
	GetID() string
}

// ProgramCategory is the fixed set of program categories.
type ProgramCategory string

// Program categories.
const (
	CategoryEducation        ProgramCategory = "Education"
	CategoryHealth           ProgramCategory = "Health"
	CategoryWomenEmpowerment ProgramCategory = "Women Empowerment"
	CategoryDisasterRelief   ProgramCategory = "Disaster Relief"
	CategoryGeneral          ProgramCategory = "General"
)

// ProgramCategories lists program categories in display order.
var ProgramCategories = []ProgramCategory{
	CategoryEducation,
	CategoryHealth,
	CategoryWomenEmpowerment,
	CategoryDisasterRelief,
	CategoryGeneral,
}

// Valid reports whether c is one of ProgramCategories.
func (c ProgramCategory) Valid() bool {
	for _, v := range ProgramCategories {
		if v == c {
			return true
		}
	}
	return false
}

// GalleryCategories lists the fixed gallery categories.
var GalleryCategories = []string{"General", "Education", "Health", "Relief", "Events", "Volunteers"}

// ValidGalleryCategory reports whether c is a known gallery category.
func ValidGalleryCategory(c string) bool {
	for _, v := range GalleryCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Program is a charity program.
type Program struct {
	ID               string          `json:"id" yaml:"id"`
	Title            string          `json:"title" yaml:"title"`
	ShortDescription string          `json:"shortDescription" yaml:"shortDescription"`
	FullDescription  string          `json:"fullDescription" yaml:"fullDescription"`
	Category         ProgramCategory `json:"category" yaml:"category"`
	Beneficiaries    string          `json:"beneficiaries" yaml:"beneficiaries"`
	Location         string          `json:"location" yaml:"location"`
	Image            string          `json:"image" yaml:"image"`
	Active           bool            `json:"active" yaml:"active"`
}

// GetID implements Record.
func (p Program) GetID() string { return p.ID }

// Event is a dated event. Date is a calendar date (YYYY-MM-DD).
type Event struct {
	ID               string `json:"id" yaml:"id"`
	Title            string `json:"title" yaml:"title"`
	Date             string `json:"date" yaml:"date"`
	Location         string `json:"location" yaml:"location"`
	ShortDescription string `json:"shortDescription" yaml:"shortDescription"`
	FullDescription  string `json:"fullDescription" yaml:"fullDescription"`
	Image            string `json:"image,omitempty" yaml:"image,omitempty"`
}

// GetID implements Record.
func (e Event) GetID() string { return e.ID }

// BlogPost is a blog article. Image is a URL or an inline data URL.
type BlogPost struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Slug     string `json:"slug" yaml:"slug"`
	Date     string `json:"date" yaml:"date"`
	Author   string `json:"author" yaml:"author"`
	Excerpt  string `json:"excerpt" yaml:"excerpt"`
	Content  string `json:"content" yaml:"content"`
	Image    string `json:"image,omitempty" yaml:"image,omitempty"`
	ImageAlt string `json:"imageAlt,omitempty" yaml:"imageAlt,omitempty"`
}

// GetID implements Record.
func (b BlogPost) GetID() string { return b.ID }

// HasInlineImage reports whether the image is embedded in the document.
func (b BlogPost) HasInlineImage() bool { return strings.HasPrefix(b.Image, "data:") }

// GalleryItem is a captioned picture.
type GalleryItem struct {
	ID       string `json:"id" yaml:"id"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
	Caption  string `json:"caption" yaml:"caption"`
	Category string `json:"category" yaml:"category"`
}

// GetID implements Record.
func (g GalleryItem) GetID() string { return g.ID }

// UploadMarkerPrefix marks report files that were "uploaded" rather than linked.
const UploadMarkerPrefix = "simulated_upload/"

// Report is a transparency report. FileURL is a URL or an upload marker.
type Report struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Year        string `json:"year" yaml:"year"`
	Description string `json:"description" yaml:"description"`
	FileURL     string `json:"fileUrl" yaml:"fileUrl"`
}

// GetID implements Record.
func (r Report) GetID() string { return r.ID }

// IsUploaded reports whether the file reference is an upload marker.
func (r Report) IsUploaded() bool {
	return strings.HasPrefix(r.FileURL, UploadMarkerPrefix)
}
