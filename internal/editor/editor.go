// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor implements the add/edit/delete workflow shared by every
// admin-managed collection.
//
// An Editor is in exactly one of two states. In StateList it shows the
// records loaded by Load. Add or Edit move it to StateEditing with a form
// value; Cancel or a successful Submit move it back. Submit decides between
// create and update by looking the form id up in the list loaded by Load,
// not in a fresh read, and each Submit or Delete performs exactly one write.
package editor

import (
	"context"
	"fmt"
	"slices"

	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/store"
)

// State is the editor state.
type State int

// Editor states.
const (
	StateList State = iota
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "list"
}

// Error is an editor error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotEditing is returned by form operations while in StateList.
	ErrNotEditing Error = "editor: not editing"

	// ErrEditing is returned by list operations while a form is open.
	ErrEditing Error = "editor: a form is open"

	// ErrNotFound is returned when the id is not in the loaded list.
	ErrNotFound Error = "editor: record not found"

	// ErrIDChanged is returned when SetForm would change the record id.
	ErrIDChanged Error = "editor: record id cannot change"
)

// Outcome reports what Submit did.
type Outcome int

// Submit outcomes.
const (
	Created Outcome = iota + 1
	Updated
	// Missing means the record was in the loaded list but was gone from the
	// store when the update ran. Nothing was written.
	Missing
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Missing:
		return "missing"
	default:
		return "none"
	}
}

// Persister stores records of one collection.
type Persister[T model.Record] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, item T) (found bool, err error)
	Delete(ctx context.Context, id string) (found bool, err error)
}

// Template returns the initial form value for a new record with id.
type Template[T model.Record] func(id string) T

// Option configures an Editor.
type Option func(*options)

type options struct {
	newID func() string
}

// WithIDGenerator overrides how fresh ids are made.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// Editor drives the workflow for one collection. It is not safe for
// concurrent use; HTTP handlers create one per request.
type Editor[T model.Record] struct {
	persist  Persister[T]
	template Template[T]
	newID    func() string

	state State
	items []T
	form  T
}

// New returns an editor in StateList with an empty list. Call Load first.
func New[T model.Record](p Persister[T], tmpl Template[T], opts ...Option) *Editor[T] {
	o := options{newID: store.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return &Editor[T]{persist: p, template: tmpl, newID: o.newID}
}

// Load reads the current list from the persister.
func (e *Editor[T]) Load(ctx context.Context) error {
	items, err := e.persist.List(ctx)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}
	e.items = items
	return nil
}

// State returns the current state.
func (e *Editor[T]) State() State { return e.state }

// Items returns a copy of the loaded list.
func (e *Editor[T]) Items() []T { return slices.Clone(e.items) }

// Form returns the open form value.
func (e *Editor[T]) Form() (T, bool) {
	return e.form, e.state == StateEditing
}

// IsNew reports whether the open form would create a record on Submit.
func (e *Editor[T]) IsNew() bool {
	return e.state == StateEditing && e.index(e.form.GetID()) < 0
}

// Add opens a form seeded from the template with a fresh id.
func (e *Editor[T]) Add() (T, error) {
	if e.state == StateEditing {
		var zero T
		return zero, ErrEditing
	}
	e.form = e.template(e.newID())
	e.state = StateEditing
	return e.form, nil
}

// Edit opens a form holding a copy of the record with id.
func (e *Editor[T]) Edit(id string) (T, error) {
	var zero T
	if e.state == StateEditing {
		return zero, ErrEditing
	}
	i := e.index(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	// Records are plain values; the assignment copies them.
	e.form = e.items[i]
	e.state = StateEditing
	return e.form, nil
}

// Open enters StateEditing with an existing form value, as when a submitted
// HTML form is replayed on a fresh editor. The id decides between Add and
// Edit semantics.
func (e *Editor[T]) Open(form T) error {
	if e.state == StateEditing {
		return ErrEditing
	}
	if form.GetID() == "" {
		return store.ErrMissingID
	}
	e.form = form
	e.state = StateEditing
	return nil
}

// SetForm replaces the open form value. The id must stay the same.
func (e *Editor[T]) SetForm(form T) error {
	if e.state != StateEditing {
		return ErrNotEditing
	}
	if form.GetID() != e.form.GetID() {
		return ErrIDChanged
	}
	e.form = form
	return nil
}

// Cancel discards the form without writing.
func (e *Editor[T]) Cancel() {
	var zero T
	e.form = zero
	e.state = StateList
}

// Submit writes the form: Update when its id is in the loaded list,
// Create otherwise. On success the local list is patched and the editor
// returns to StateList. On error the form stays open.
func (e *Editor[T]) Submit(ctx context.Context) (Outcome, error) {
	if e.state != StateEditing {
		return 0, ErrNotEditing
	}

	if i := e.index(e.form.GetID()); i >= 0 {
		found, err := e.persist.Update(ctx, e.form)
		if err != nil {
			return 0, err
		}
		if !found {
			e.items = slices.Delete(e.items, i, i+1)
			e.Cancel()
			return Missing, nil
		}
		e.items[i] = e.form
		e.Cancel()
		return Updated, nil
	}

	if err := e.persist.Create(ctx, e.form); err != nil {
		return 0, err
	}
	e.items = slices.Insert(e.items, 0, e.form)
	e.Cancel()
	return Created, nil
}

// Delete removes the record with id. It is only allowed in StateList and
// reports whether the store held the record.
func (e *Editor[T]) Delete(ctx context.Context, id string) (bool, error) {
	if e.state == StateEditing {
		return false, ErrEditing
	}
	found, err := e.persist.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	e.items = slices.DeleteFunc(e.items, func(item T) bool { return item.GetID() == id })
	return found, nil
}

func (e *Editor[T]) index(id string) int {
	return slices.IndexFunc(e.items, func(item T) bool { return item.GetID() == id })
}
