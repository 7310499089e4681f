// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"

	"github.com/olegiv/charity-cms/internal/model"
	"github.com/olegiv/charity-cms/internal/store"
)

// StorePersister binds a Persister to one collection of a store.
type StorePersister[T model.Record] struct {
	Store      *store.Store
	Collection model.Collection[T]
}

// List implements Persister.
func (p StorePersister[T]) List(ctx context.Context) ([]T, error) {
	return store.List(ctx, p.Store, p.Collection)
}

// Create implements Persister.
func (p StorePersister[T]) Create(ctx context.Context, item T) error {
	return store.CreateItem(ctx, p.Store, p.Collection, item)
}

// Update implements Persister.
func (p StorePersister[T]) Update(ctx context.Context, item T) (bool, error) {
	return store.UpdateItem(ctx, p.Store, p.Collection, item)
}

// Delete implements Persister.
func (p StorePersister[T]) Delete(ctx context.Context, id string) (bool, error) {
	return store.DeleteItem(ctx, p.Store, p.Collection, id)
}

var _ Persister[model.Program] = StorePersister[model.Program]{}
