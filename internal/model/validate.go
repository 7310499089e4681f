// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidContent is wrapped by every error Validate returns.
var ErrInvalidContent = errors.New("invalid content document")

// Validate checks the invariants a whole document must hold before it is
// written in one piece: every record has an id that is unique within its
// collection, enums hold known values and donation amounts are finite.
func (c SiteContent) Validate() error {
	var errs []error
	errs = append(errs, checkIDs(&c, Programs)...)
	errs = append(errs, checkIDs(&c, Events)...)
	errs = append(errs, checkIDs(&c, BlogPosts)...)
	errs = append(errs, checkIDs(&c, Gallery)...)
	errs = append(errs, checkIDs(&c, Reports)...)
	errs = append(errs, checkIDs(&c, Volunteers)...)
	errs = append(errs, checkIDs(&c, Donations)...)
	errs = append(errs, checkIDs(&c, Inquiries)...)

	for _, p := range c.Programs {
		if !p.Category.Valid() {
			errs = append(errs, fmt.Errorf("programs %q: unknown category %q", p.ID, p.Category))
		}
	}
	for _, g := range c.Gallery {
		if !ValidGalleryCategory(g.Category) {
			errs = append(errs, fmt.Errorf("gallery %q: unknown category %q", g.ID, g.Category))
		}
	}
	for _, v := range c.Volunteers {
		if !v.Status.Valid() {
			errs = append(errs, fmt.Errorf("volunteers %q: unknown status %q", v.ID, v.Status))
		}
	}
	for _, q := range c.Inquiries {
		if !q.Status.Valid() {
			errs = append(errs, fmt.Errorf("inquiries %q: unknown status %q", q.ID, q.Status))
		}
	}
	for _, d := range c.Donations {
		if !ValidAmount(d.Amount) {
			errs = append(errs, fmt.Errorf("donations %q: amount %v is not a finite number", d.ID, d.Amount))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidContent, errors.Join(errs...))
}

// ValidAmount reports whether a donation amount can be stored. JSON has no
// encoding for NaN or infinities.
func ValidAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

func checkIDs[T Record](doc *SiteContent, c Collection[T]) []error {
	var errs []error
	seen := make(map[string]bool)
	for i, item := range *c.Items(doc) {
		id := item.GetID()
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("%s[%d]: missing id", c.Name, i))
		case seen[id]:
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", c.Name, id))
		}
		seen[id] = true
	}
	return errs
}
