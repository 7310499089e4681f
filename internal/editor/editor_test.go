// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/storage"
	"github.com/olegiv/charity-cms/internal/store"
)

// fakePersister records every call and serves items from memory.
type fakePersister struct {
	items   []model.Event
	creates []model.Event
	updates []model.Event
	deletes []string
	lists   int
	err     error
	gone    map[string]bool // ids that vanished after List
}

func (f *fakePersister) List(context.Context) ([]model.Event, error) {
	f.lists++
	return append([]model.Event(nil), f.items...), f.err
}

func (f *fakePersister) Create(_ context.Context, e model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.creates = append(f.creates, e)
	return nil
}

func (f *fakePersister) Update(_ context.Context, e model.Event) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.updates = append(f.updates, e)
	return !f.gone[e.ID], nil
}

func (f *fakePersister) Delete(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.deletes = append(f.deletes, id)
	return !f.gone[id], nil
}

func (f *fakePersister) writes() int {
	return len(f.creates) + len(f.updates) + len(f.deletes)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func newTestEditor(t *testing.T, items ...model.Event) (*Editor[model.Event], *fakePersister) {
	t.Helper()
	p := &fakePersister{items: items}
	e := New[model.Event](p, EventView{}.New, WithIDGenerator(sequentialIDs()))
	require.NoError(t, e.Load(context.Background()))
	return e, p
}

var (
	eventA = model.Event{ID: "a", Title: "Health Camp", Date: "2024-01-10", Location: "Puri"}
	eventB = model.Event{ID: "b", Title: "Winter Drive", Date: "2024-12-20", Location: "Cuttack"}
)

func TestEditor_StartsInList(t *testing.T) {
	e, _ := newTestEditor(t, eventA, eventB)

	assert.Equal(t, StateList, e.State())
	assert.Equal(t, []model.Event{eventA, eventB}, e.Items())
	_, editing := e.Form()
	assert.False(t, editing)
	assert.False(t, e.IsNew())
}

func TestEditor_AddUsesTemplateAndFreshID(t *testing.T) {
	e, _ := newTestEditor(t, eventA)

	form, err := e.Add()
	require.NoError(t, err)

	assert.Equal(t, StateEditing, e.State())
	assert.Equal(t, model.Event{ID: "new-1"}, form)
	assert.True(t, e.IsNew())

	_, err = e.Add()
	assert.ErrorIs(t, err, ErrEditing)
}

func TestEditor_EditCopiesRecord(t *testing.T) {
	e, _ := newTestEditor(t, eventA, eventB)

	form, err := e.Edit("b")
	require.NoError(t, err)
	assert.Equal(t, eventB, form)
	assert.False(t, e.IsNew())

	form.Title = "Changed"
	require.NoError(t, e.SetForm(form))
	assert.Equal(t, "Winter Drive", e.Items()[1].Title, "list must not see unsaved edits")
}

func TestEditor_EditUnknownID(t *testing.T) {
	e, _ := newTestEditor(t, eventA)

	_, err := e.Edit("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, StateList, e.State())
}

func TestEditor_CancelWritesNothing(t *testing.T) {
	e, p := newTestEditor(t, eventA)

	_, err := e.Edit("a")
	require.NoError(t, err)
	e.Cancel()

	assert.Equal(t, StateList, e.State())
	assert.Zero(t, p.writes())

	_, err = e.Add()
	require.NoError(t, err)
	e.Cancel()
	assert.Zero(t, p.writes())
}

func TestEditor_SubmitExistingUpdatesOnce(t *testing.T) {
	e, p := newTestEditor(t, eventA, eventB)

	form, err := e.Edit("b")
	require.NoError(t, err)
	form.Location = "Bhubaneswar"
	require.NoError(t, e.SetForm(form))

	outcome, err := e.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Updated, outcome)
	assert.Len(t, p.updates, 1)
	assert.Empty(t, p.creates)
	assert.Equal(t, StateList, e.State())
	assert.Equal(t, []model.Event{eventA, form}, e.Items())
}

func TestEditor_SubmitNewCreatesOnce(t *testing.T) {
	e, p := newTestEditor(t, eventA, eventB)

	form, err := e.Add()
	require.NoError(t, err)
	form.Title = "Tree Planting"
	require.NoError(t, e.SetForm(form))

	outcome, err := e.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Created, outcome)
	assert.Len(t, p.creates, 1)
	assert.Empty(t, p.updates)
	assert.Equal(t, "new-1", e.Items()[0].ID, "new records are prepended")
}

func TestEditor_SubmitUsesLoadedList(t *testing.T) {
	// The id exists in the store but not in the list loaded earlier, so the
	// editor creates.
	e, p := newTestEditor(t, eventA)
	p.items = append(p.items, eventB)

	require.NoError(t, e.Open(eventB))
	assert.True(t, e.IsNew())

	outcome, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Len(t, p.creates, 1)
}

func TestEditor_SubmitStaleUpdate(t *testing.T) {
	e, p := newTestEditor(t, eventA, eventB)
	p.gone = map[string]bool{"b": true}

	_, err := e.Edit("b")
	require.NoError(t, err)

	outcome, err := e.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Missing, outcome)
	assert.Len(t, p.updates, 1)
	assert.Empty(t, p.creates)
	assert.Equal(t, []model.Event{eventA}, e.Items())
}

func TestEditor_SubmitErrorKeepsForm(t *testing.T) {
	e, p := newTestEditor(t, eventA)
	boom := errors.New("disk full")

	form, err := e.Add()
	require.NoError(t, err)
	form.Title = "Unsaved work"
	require.NoError(t, e.SetForm(form))

	p.err = boom
	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StateEditing, e.State())
	kept, _ := e.Form()
	assert.Equal(t, "Unsaved work", kept.Title)
}

func TestEditor_FormOperationsNeedEditing(t *testing.T) {
	e, _ := newTestEditor(t, eventA)

	assert.ErrorIs(t, e.SetForm(eventA), ErrNotEditing)
	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestEditor_SetFormKeepsID(t *testing.T) {
	e, _ := newTestEditor(t, eventA)
	_, err := e.Edit("a")
	require.NoError(t, err)

	assert.ErrorIs(t, e.SetForm(eventB), ErrIDChanged)
}

func TestEditor_Open(t *testing.T) {
	e, _ := newTestEditor(t, eventA)

	assert.ErrorIs(t, e.Open(model.Event{}), store.ErrMissingID)
	require.NoError(t, e.Open(eventA))
	assert.False(t, e.IsNew())
	assert.ErrorIs(t, e.Open(eventB), ErrEditing)
}

func TestEditor_DeleteOnce(t *testing.T) {
	e, p := newTestEditor(t, eventA, eventB)

	found, err := e.Delete(context.Background(), "a")
	require.NoError(t, err)

	assert.True(t, found)
	assert.Equal(t, []string{"a"}, p.deletes)
	assert.Equal(t, 1, p.writes())
	assert.Equal(t, []model.Event{eventB}, e.Items())
}

func TestEditor_DeleteOnlyFromList(t *testing.T) {
	e, p := newTestEditor(t, eventA)
	_, err := e.Edit("a")
	require.NoError(t, err)

	_, err = e.Delete(context.Background(), "a")
	assert.ErrorIs(t, err, ErrEditing)
	assert.Zero(t, p.writes())
}

func TestEditor_LoadError(t *testing.T) {
	p := &fakePersister{err: errors.New("offline")}
	e := New[model.Event](p, EventView{}.New)

	assert.Error(t, e.Load(context.Background()))
}

func TestStatePrintable(t *testing.T) {
	assert.Equal(t, "list", StateList.String())
	assert.Equal(t, "editing", StateEditing.String())
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "missing", Missing.String())
}

func TestStorePersister_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := store.New(storage.NewMemory())
	_, err := s.Initialize(ctx)
	require.NoError(t, err)

	changes := 0
	s.Subscribe("test", func(context.Context) { changes++ })

	p := StorePersister[model.Program]{Store: s, Collection: model.Programs}
	e := New[model.Program](p, ProgramView{}.New)
	require.NoError(t, e.Load(ctx))
	before := len(e.Items())

	form, err := e.Add()
	require.NoError(t, err)
	form.Title = "Clean Water"
	form.ShortDescription = "Wells for villages"
	require.NoError(t, e.SetForm(form))

	outcome, err := e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, 1, changes)

	programs, err := store.List(ctx, s, model.Programs)
	require.NoError(t, err)
	assert.Len(t, programs, before+1)
	assert.Equal(t, "Clean Water", programs[0].Title)

	edited, err := e.Edit(form.ID)
	require.NoError(t, err)
	edited.Active = false
	require.NoError(t, e.SetForm(edited))
	outcome, err = e.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)
	assert.Equal(t, 2, changes)

	found, err := e.Delete(ctx, form.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, changes)

	found, err = e.Delete(ctx, form.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 3, changes, "deleting a missing id writes nothing")
}
