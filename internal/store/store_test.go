// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/charity-cms/internal/hooks"
	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/storage"
)

// countingBackend counts writes to the wrapped backend.
type countingBackend struct {
	storage.Backend
	puts atomic.Int32
}

func (c *countingBackend) Put(ctx context.Context, key string, value []byte) error {
	c.puts.Add(1)
	return c.Backend.Put(ctx, key, value)
}

type testEnv struct {
	store   *Store
	backend *countingBackend
	changes *atomic.Int32
}

func newTestStore(t *testing.T, opts ...Option) testEnv {
	t.Helper()
	backend := &countingBackend{Backend: storage.NewMemory()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := hooks.NewRegistry(logger)

	var seq atomic.Int32
	base := []Option{
		WithHooks(registry),
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	}
	s := New(backend, append(base, opts...)...)

	changes := &atomic.Int32{}
	s.Subscribe("test", func(context.Context) { changes.Add(1) })
	return testEnv{store: s, backend: backend, changes: changes}
}

func twoPrograms() model.SiteContent {
	doc := model.SiteContent{Programs: []model.Program{
		{ID: "a", Title: "A", Category: model.CategoryEducation},
		{ID: "b", Title: "B", Category: model.CategoryHealth},
	}}
	doc.Normalize()
	return doc
}

func ids(items []model.Program) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)

	created, err := env.store.Initialize(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	first, err := env.backend.Get(ctx, DefaultKey)
	require.NoError(t, err)

	created, err = env.store.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	second, err := env.backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, env.backend.puts.Load())
	assert.EqualValues(t, 1, env.changes.Load())
}

func TestInitializeKeepsExistingDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.backend.Put(ctx, DefaultKey, []byte(`{"programs":[]}`)))

	created, err := env.store.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Programs)
	assert.NotNil(t, doc.Donations, "missing collections are normalised to empty")
}

func TestInitializeNeverOverwritesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.backend.Put(ctx, DefaultKey, []byte(`{not json`)))

	created, err := env.store.Initialize(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = env.store.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	raw, err := env.backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(raw))
}

func TestSnapshotFallsBackToSeed(t *testing.T) {
	env := newTestStore(t)

	doc, err := env.store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Programs, 4)
	assert.Len(t, doc.Events, 2)
	assert.Len(t, doc.BlogPosts, 2)
	assert.Len(t, doc.Gallery, 3)
	assert.Len(t, doc.Reports, 2)
	assert.Empty(t, doc.Donations)
	assert.Equal(t, 12500, doc.Settings.Stats.Beneficiaries)
	assert.Zero(t, env.backend.puts.Load(), "snapshot must not write")
}

func TestReplaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)

	doc := DefaultSeed()
	doc.Donations = []model.Donation{{ID: "d1", DonorName: "Asha", Amount: 500.25, Purpose: "Education", Date: "2024-03-01T10:30:00.000Z"}}
	doc.Volunteers = []model.Volunteer{{ID: "v1", Name: "Ravi", Age: 22, Status: model.VolunteerActive}}
	doc.Inquiries = []model.ContactInquiry{{ID: "q1", Message: "Hello", Status: model.InquiryResolved}}
	doc.BlogPosts[0].Image = "data:image/jpeg;base64,AAAA"
	doc.Settings.HeroText = "New hero"

	require.NoError(t, env.store.Replace(ctx, doc))
	got, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.EqualValues(t, 1, env.changes.Load())
}

func TestCreateItemPrepends(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.store.Replace(ctx, twoPrograms()))

	require.NoError(t, CreateItem(ctx, env.store, model.Programs, model.Program{ID: "c", Title: "C"}))

	items, err := List(ctx, env.store, model.Programs)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids(items))
	assert.EqualValues(t, 2, env.changes.Load())
}

func TestCreateItemRejectsDuplicateAndMissingID(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.store.Replace(ctx, twoPrograms()))
	before := env.backend.puts.Load()

	err := CreateItem(ctx, env.store, model.Programs, model.Program{ID: "a"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = CreateItem(ctx, env.store, model.Programs, model.Program{})
	assert.ErrorIs(t, err, ErrMissingID)

	assert.Equal(t, before, env.backend.puts.Load())
}

func TestUpdateItem(t *testing.T) {
	tests := []struct {
		name      string
		item      model.Program
		wantFound bool
		wantTitle []string
		wantPuts  int32
	}{
		{
			name:      "existing record is replaced in place",
			item:      model.Program{ID: "b", Title: "B2"},
			wantFound: true,
			wantTitle: []string{"A", "B2"},
			wantPuts:  1,
		},
		{
			name:      "absent id writes nothing",
			item:      model.Program{ID: "z", Title: "Z"},
			wantFound: false,
			wantTitle: []string{"A", "B"},
			wantPuts:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestStore(t)
			require.NoError(t, env.store.Replace(ctx, twoPrograms()))
			before := env.backend.puts.Load()

			found, err := UpdateItem(ctx, env.store, model.Programs, tt.item)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)

			items, err := List(ctx, env.store, model.Programs)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, []string{items[0].Title, items[1].Title})
			assert.Equal(t, tt.wantPuts, env.backend.puts.Load()-before)
		})
	}
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.store.Replace(ctx, twoPrograms()))

	found, err := DeleteItem(ctx, env.store, model.Programs, "z")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = DeleteItem(ctx, env.store, model.Programs, "b")
	require.NoError(t, err)
	assert.True(t, found)

	items, err := List(ctx, env.store, model.Programs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(items))
	// One write for Replace, one for the successful delete.
	assert.EqualValues(t, 2, env.backend.puts.Load())
}

func TestAddDonationScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	_, err := env.store.Initialize(ctx)
	require.NoError(t, err)

	d, err := env.store.AddDonation(ctx, model.DonationInput{DonorName: "Asha", Amount: 500, Purpose: "Education"})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "2024-03-01T10:30:00.000Z", d.Date)

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Donations, 1)
	assert.Equal(t, "Asha", doc.Donations[0].DonorName)
	assert.Equal(t, 500.0, doc.Donations[0].Amount)
	assert.Equal(t, "Education", doc.Donations[0].Purpose)
}

func TestSubmissionDefaults(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)

	var submissions []hooks.Event
	env.store.Hooks().Subscribe(hooks.HookSubmissionReceived, "capture", func(_ context.Context, ev hooks.Event) error {
		submissions = append(submissions, ev)
		return nil
	})

	v, err := env.store.AddVolunteer(ctx, model.VolunteerInput{Name: "Ravi", Age: 24, City: "Cuttack"})
	require.NoError(t, err)
	assert.Equal(t, model.VolunteerNew, v.Status)
	assert.NotEmpty(t, v.SubmittedAt)

	q, err := env.store.AddInquiry(ctx, model.InquiryInput{Name: "Mira", Message: "How can I help?"})
	require.NoError(t, err)
	assert.Equal(t, model.InquiryPending, q.Status)
	assert.NotEqual(t, v.ID, q.ID)

	v2, err := env.store.AddVolunteer(ctx, model.VolunteerInput{Name: "Second"})
	require.NoError(t, err)

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Volunteers, 2)
	assert.Equal(t, v2.ID, doc.Volunteers[0].ID, "submissions are prepended")

	require.Len(t, submissions, 3)
	assert.Equal(t, "volunteers", submissions[0].Kind)
	assert.Equal(t, "inquiries", submissions[1].Kind)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)

	settings := DefaultSeed().Settings
	settings.Mission = "Updated mission"
	settings.Stats.Meals = 60000
	require.NoError(t, env.store.UpdateSettings(ctx, settings))

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, doc.Settings)
	assert.Len(t, doc.Programs, 4, "collections survive a settings update")
}

func TestStatusUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	v, err := env.store.AddVolunteer(ctx, model.VolunteerInput{Name: "Ravi"})
	require.NoError(t, err)
	q, err := env.store.AddInquiry(ctx, model.InquiryInput{Name: "Mira"})
	require.NoError(t, err)

	ok, err := env.store.SetVolunteerStatus(ctx, v.ID, model.VolunteerContacted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.store.SetInquiryStatus(ctx, q.ID, model.InquiryResolved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.store.SetInquiryStatus(ctx, "missing", model.InquiryResolved)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.store.SetVolunteerStatus(ctx, v.ID, "Hired")
	assert.Error(t, err)

	stats, err := env.store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.PendingInquiries)
	assert.Zero(t, stats.NewVolunteers)
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)

	items, err := env.store.Collection(ctx, "gallery")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = env.store.Collection(ctx, "sponsors")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)
	_, err := src.store.Initialize(ctx)
	require.NoError(t, err)
	_, err = src.store.AddDonation(ctx, model.DonationInput{DonorName: "Asha", Amount: 500})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.store.Export(ctx, &buf))

	dst := newTestStore(t)
	require.NoError(t, dst.store.Import(ctx, &buf))

	want, err := src.store.Snapshot(ctx)
	require.NoError(t, err)
	got, err := dst.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = dst.store.Import(ctx, bytes.NewBufferString("[]"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBackupsAndPrune(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestStore(t, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	_, err := env.store.Backup(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = env.store.Initialize(ctx)
	require.NoError(t, err)
	changesBefore := env.changes.Load()

	var keys []string
	for range 3 {
		k, err := env.store.Backup(ctx)
		require.NoError(t, err)
		keys = append(keys, k)
	}
	assert.Equal(t, changesBefore, env.changes.Load(), "backups are not content changes")

	listed, err := env.store.Backups(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys, listed)

	removed, err := env.store.PruneBackups(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	listed, err = env.store.Backups(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys[2:], listed)
}

func TestAddDonationRejectsNonFiniteAmount(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	_, err := env.store.Initialize(ctx)
	require.NoError(t, err)
	before := env.backend.puts.Load()

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := env.store.AddDonation(ctx, model.DonationInput{DonorName: "Asha", Amount: amount})
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
	assert.Equal(t, before, env.backend.puts.Load())

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Donations)
}

const duplicateProgramsJSON = `{"programs":[
	{"id":"x","title":"One","category":"Health"},
	{"id":"x","title":"Two","category":"Health"},
	{"id":"","title":"Three","category":"Health"}]}`

func TestImportRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	_, err := env.store.Initialize(ctx)
	require.NoError(t, err)
	before := env.backend.puts.Load()

	err = env.store.Import(ctx, bytes.NewBufferString(duplicateProgramsJSON))
	require.ErrorIs(t, err, model.ErrInvalidContent)
	assert.Contains(t, err.Error(), `duplicate id "x"`)
	assert.Contains(t, err.Error(), "programs[2]: missing id")

	assert.Equal(t, before, env.backend.puts.Load())
	items, err := List(ctx, env.store, model.Programs)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(items))
}

func TestRestoreBackupRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	_, err := env.store.Initialize(ctx)
	require.NoError(t, err)

	key := env.store.BackupPrefix() + "20240101-000000.000"
	require.NoError(t, env.backend.Put(ctx, key, []byte(duplicateProgramsJSON)))

	err = env.store.RestoreBackup(ctx, key)
	require.ErrorIs(t, err, model.ErrInvalidContent)

	items, err := List(ctx, env.store, model.Programs)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestDefaultSeedIsValid(t *testing.T) {
	assert.NoError(t, DefaultSeed().Validate())
}

func TestRestoreBackup(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	_, err := env.store.Initialize(ctx)
	require.NoError(t, err)

	key, err := env.store.Backup(ctx)
	require.NoError(t, err)

	_, err = DeleteItem(ctx, env.store, model.Programs, "p1")
	require.NoError(t, err)
	require.NoError(t, env.store.RestoreBackup(ctx, key))

	items, err := List(ctx, env.store, model.Programs)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	assert.Error(t, env.store.RestoreBackup(ctx, DefaultKey))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	env := newTestStore(t)
	require.NoError(t, env.store.Replace(ctx, twoPrograms()))
	require.NoError(t, env.store.Reset(ctx))

	doc, err := env.store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSeed(), doc)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	yamlDoc := `settings:
  mission: Feed every child
  stats:
    beneficiaries: 10
programs:
  - id: p9
    title: School Meals
    category: Health
    active: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	doc, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Feed every child", doc.Settings.Mission)
	assert.Equal(t, 10, doc.Settings.Stats.Beneficiaries)
	require.Len(t, doc.Programs, 1)
	assert.Equal(t, model.CategoryHealth, doc.Programs[0].Category)
	assert.NotNil(t, doc.Gallery)

	env := newTestStore(t, WithSeed(doc))
	_, err = env.store.Initialize(context.Background())
	require.NoError(t, err)
	snap, err := env.store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc, snap)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte(`programs:
  - id: p1
    category: Health
  - id: p1
    category: Education
`), 0o600))
	_, err = LoadSeedFile(dup)
	assert.ErrorIs(t, err, model.ErrInvalidContent)
}

func TestWatchReportsExternalEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := storage.NewFile(storage.FileOptions{Dir: t.TempDir(), Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	s := New(backend, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err = s.Initialize(ctx)
	require.NoError(t, err)

	external := make(chan hooks.Event, 4)
	s.Hooks().Subscribe(hooks.HookContentChanged, "capture", func(_ context.Context, ev hooks.Event) error {
		if ev.Source == hooks.SourceExternal {
			external <- ev
		}
		return nil
	})

	watching, err := s.Watch(ctx)
	require.NoError(t, err)
	require.True(t, watching)

	require.NoError(t, os.WriteFile(backend.Path(DefaultKey), []byte(`{"programs":[]}`), 0o600))
	select {
	case ev := <-external:
		assert.Equal(t, DefaultKey, ev.Key)
	case <-time.After(3 * time.Second):
		t.Fatal("external edit not reported")
	}

	mem := New(storage.NewMemory())
	watching, err = mem.Watch(ctx)
	require.NoError(t, err)
	assert.False(t, watching)
}

func TestConcurrentSubmissionsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	const n = 20
	errs := make(chan error, n)
	for i := range n {
		go func() {
			_, err := s.AddDonation(ctx, model.DonationInput{DonorName: fmt.Sprintf("donor-%d", i), Amount: 1})
			errs <- err
		}()
	}
	for range n {
		require.NoError(t, <-errs)
	}

	doc, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Donations, n)
}
