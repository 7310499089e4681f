// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Collection names one of the record arrays inside SiteContent and knows how
// to reach it. The accessor returns a pointer so mutations can replace the
// slice in place.
type Collection[T Record] struct {
	Name  string
	Items func(doc *SiteContent) *[]T
}

// Managed collections edited through the admin panel.
var (
	Programs  = Collection[Program]{Name: "programs", Items: func(d *SiteContent) *[]Program { return &d.Programs }}
	Events    = Collection[Event]{Name: "events", Items: func(d *SiteContent) *[]Event { return &d.Events }}
	BlogPosts = Collection[BlogPost]{Name: "blogPosts", Items: func(d *SiteContent) *[]BlogPost { return &d.BlogPosts }}
	Gallery   = Collection[GalleryItem]{Name: "gallery", Items: func(d *SiteContent) *[]GalleryItem { return &d.Gallery }}
	Reports   = Collection[Report]{Name: "reports", Items: func(d *SiteContent) *[]Report { return &d.Reports }}
)

// Append-only submission collections.
var (
	Volunteers = Collection[Volunteer]{Name: "volunteers", Items: func(d *SiteContent) *[]Volunteer { return &d.Volunteers }}
	Donations  = Collection[Donation]{Name: "donations", Items: func(d *SiteContent) *[]Donation { return &d.Donations }}
	Inquiries  = Collection[ContactInquiry]{Name: "inquiries", Items: func(d *SiteContent) *[]ContactInquiry { return &d.Inquiries }}
)

// CollectionNames lists every collection key in document order.
var CollectionNames = []string{
	"programs", "events", "blogPosts", "gallery", "reports",
	"volunteers", "donations", "inquiries",
}

// Find returns the record with the given id.
func (c Collection[T]) Find(doc *SiteContent, id string) (T, bool) {
	for _, item := range *c.Items(doc) {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Prepend inserts item at the front of the collection.
func (c Collection[T]) Prepend(doc *SiteContent, item T) {
	items := c.Items(doc)
	next := make([]T, 0, len(*items)+1)
	next = append(next, item)
	*items = append(next, *items...)
}

// Replace swaps the record whose id matches item's id, keeping its position.
// It reports false when no record matched.
func (c Collection[T]) Replace(doc *SiteContent, item T) bool {
	items := *c.Items(doc)
	for i := range items {
		if items[i].GetID() == item.GetID() {
			items[i] = item
			return true
		}
	}
	return false
}

// Remove deletes every record with the given id, preserving the order of the
// rest. It reports false when nothing was removed.
func (c Collection[T]) Remove(doc *SiteContent, id string) bool {
	items := c.Items(doc)
	kept := make([]T, 0, len(*items))
	for _, item := range *items {
		if item.GetID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(*items) {
		return false
	}
	*items = kept
	return true
}

// Raw returns the named collection as an untyped value for JSON encoding.
func Raw(doc *SiteContent, name string) (any, bool) {
	switch name {
	case Programs.Name:
		return doc.Programs, true
	case Events.Name:
		return doc.Events, true
	case BlogPosts.Name:
		return doc.BlogPosts, true
	case Gallery.Name:
		return doc.Gallery, true
	case Reports.Name:
		return doc.Reports, true
	case Volunteers.Name:
		return doc.Volunteers, true
	case Donations.Name:
		return doc.Donations, true
	case Inquiries.Name:
		return doc.Inquiries, true
	}
	return nil, false
}
