// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"

	"github.com/olegiv/charity-cms/internal/hooks"
	"github.com/olegiv/charity-cms/internal/model"
)

// List returns the records of collection c.
func List[T model.Record](ctx context.Context, s *Store, c model.Collection[T]) ([]T, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return *c.Items(&doc), nil
}

// Get returns one record of collection c.
func Get[T model.Record](ctx context.Context, s *Store, c model.Collection[T], id string) (T, bool, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	item, ok := c.Find(&doc, id)
	return item, ok, nil
}

// CreateItem prepends item to collection c.
func CreateItem[T model.Record](ctx context.Context, s *Store, c model.Collection[T], item T) error {
	if item.GetID() == "" {
		return ErrMissingID
	}
	var dup bool
	_, err := s.Mutate(ctx, func(doc *model.SiteContent) bool {
		if _, exists := c.Find(doc, item.GetID()); exists {
			dup = true
			return false
		}
		c.Prepend(doc, item)
		return true
	})
	if err != nil {
		return fmt.Errorf("creating %s item: %w", c.Name, err)
	}
	if dup {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, c.Name, item.GetID())
	}
	return nil
}

// UpdateItem replaces the record with item's id, keeping its position. When
// no such record exists it writes nothing and returns found=false.
func UpdateItem[T model.Record](ctx context.Context, s *Store, c model.Collection[T], item T) (found bool, err error) {
	found, err = s.Mutate(ctx, func(doc *model.SiteContent) bool {
		return c.Replace(doc, item)
	})
	if err != nil {
		return false, fmt.Errorf("updating %s item: %w", c.Name, err)
	}
	return found, nil
}

// DeleteItem removes every record with id from collection c. When nothing
// matches it writes nothing and returns found=false.
func DeleteItem[T model.Record](ctx context.Context, s *Store, c model.Collection[T], id string) (found bool, err error) {
	found, err = s.Mutate(ctx, func(doc *model.SiteContent) bool {
		return c.Remove(doc, id)
	})
	if err != nil {
		return false, fmt.Errorf("deleting %s item: %w", c.Name, err)
	}
	return found, nil
}

// AddDonation stores a public donation pledge. Amounts that JSON cannot
// encode fail with ErrInvalidAmount.
func (s *Store) AddDonation(ctx context.Context, in model.DonationInput) (model.Donation, error) {
	if !model.ValidAmount(in.Amount) {
		return model.Donation{}, fmt.Errorf("%w: %v", ErrInvalidAmount, in.Amount)
	}
	d := model.Donation{
		ID:        s.newID(),
		DonorName: in.DonorName,
		Email:     in.Email,
		Phone:     in.Phone,
		Amount:    in.Amount,
		Purpose:   in.Purpose,
		Date:      s.Timestamp(),
	}
	if err := CreateItem(ctx, s, model.Donations, d); err != nil {
		return model.Donation{}, err
	}
	s.submitted(ctx, model.Donations.Name, d.ID)
	return d, nil
}

// AddVolunteer stores a volunteer application with status New.
func (s *Store) AddVolunteer(ctx context.Context, in model.VolunteerInput) (model.Volunteer, error) {
	v := model.Volunteer{
		ID:           s.newID(),
		Name:         in.Name,
		Age:          in.Age,
		Phone:        in.Phone,
		Email:        in.Email,
		City:         in.City,
		Interest:     in.Interest,
		Availability: in.Availability,
		Status:       model.VolunteerNew,
		SubmittedAt:  s.Timestamp(),
	}
	if err := CreateItem(ctx, s, model.Volunteers, v); err != nil {
		return model.Volunteer{}, err
	}
	s.submitted(ctx, model.Volunteers.Name, v.ID)
	return v, nil
}

// AddInquiry stores a contact inquiry with status Pending.
func (s *Store) AddInquiry(ctx context.Context, in model.InquiryInput) (model.ContactInquiry, error) {
	q := model.ContactInquiry{
		ID:      s.newID(),
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Message: in.Message,
		Status:  model.InquiryPending,
		Date:    s.Timestamp(),
	}
	if err := CreateItem(ctx, s, model.Inquiries, q); err != nil {
		return model.ContactInquiry{}, err
	}
	s.submitted(ctx, model.Inquiries.Name, q.ID)
	return q, nil
}

func (s *Store) submitted(ctx context.Context, kind, id string) {
	s.notify(ctx, hooks.Event{Hook: hooks.HookSubmissionReceived, Key: s.key, Kind: kind, ID: id})
}

// UpdateSettings replaces the settings singleton.
func (s *Store) UpdateSettings(ctx context.Context, settings model.SiteSettings) error {
	_, err := s.Mutate(ctx, func(doc *model.SiteContent) bool {
		doc.Settings = settings
		return true
	})
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}

// SetVolunteerStatus moves a volunteer application through the workflow.
func (s *Store) SetVolunteerStatus(ctx context.Context, id string, status model.VolunteerStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid volunteer status %q", status)
	}
	return s.Mutate(ctx, func(doc *model.SiteContent) bool {
		v, ok := model.Volunteers.Find(doc, id)
		if !ok {
			return false
		}
		v.Status = status
		return model.Volunteers.Replace(doc, v)
	})
}

// SetInquiryStatus marks an inquiry pending or resolved.
func (s *Store) SetInquiryStatus(ctx context.Context, id string, status model.InquiryStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid inquiry status %q", status)
	}
	return s.Mutate(ctx, func(doc *model.SiteContent) bool {
		q, ok := model.Inquiries.Find(doc, id)
		if !ok {
			return false
		}
		q.Status = status
		return model.Inquiries.Replace(doc, q)
	})
}
