// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"net/url"
	"slices"
	"strings"

	"github.com/olegiv/charity-cms/internal/model"
)

// FieldKind selects the form control.
type FieldKind string

// Field kinds.
const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindDate     FieldKind = "date"
	KindImage    FieldKind = "image" // URL, upload or generated data URL
	KindFile     FieldKind = "file"  // URL or upload marker
)

// Field describes one form control with its current value.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Value       string
	Checked     bool
	Options     []string
	Required    bool
	Rows        int
	Placeholder string
	Help        string
	Generate    string // generator action that can fill this field
}

// Row is the list-view summary of a record.
type Row struct {
	ID        string
	Title     string
	Subtitle  string
	Badge     string
	Thumbnail string
}

// View renders and decodes one record type. It plays the part of the row
// renderer, the form renderer and the initial form state.
type View[T model.Record] interface {
	// Name is the URL segment, e.g. "programs".
	Name() string
	// Title is the singular display name, e.g. "Program".
	Title() string
	// New returns the initial form value for a record with id.
	New(id string) T
	Row(item T) Row
	Fields(item T) []Field
	// Decode applies submitted values on top of base. The returned record
	// always carries the submitted values so the form can be shown again;
	// the error is a FieldErrors when input is incomplete.
	Decode(values url.Values, base T) (T, error)
}

// FieldErrors maps field names to messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func (f FieldErrors) need(name, value string) {
	if value == "" {
		f[name] = "This field is required."
	}
}

func (f FieldErrors) errOrNil() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// text returns the trimmed value of name, or fallback when the field was
// not submitted at all.
func text(values url.Values, name, fallback string) string {
	if _, ok := values[name]; !ok {
		return fallback
	}
	return strings.TrimSpace(values.Get(name))
}

func checkbox(values url.Values, name string) bool {
	switch values.Get(name) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
