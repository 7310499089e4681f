// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the site content document and the records held in
// each of its collections.
package model

// SiteContent is the root document. It is persisted as a single JSON value
// and every collection key is always present, even when empty.
type SiteContent struct {
	Programs   []Program        `json:"programs" yaml:"programs"`
	Events     []Event          `json:"events" yaml:"events"`
	BlogPosts  []BlogPost       `json:"blogPosts" yaml:"blogPosts"`
	Gallery    []GalleryItem    `json:"gallery" yaml:"gallery"`
	Reports    []Report         `json:"reports" yaml:"reports"`
	Volunteers []Volunteer      `json:"volunteers" yaml:"volunteers"`
	Donations  []Donation       `json:"donations" yaml:"donations"`
	Inquiries  []ContactInquiry `json:"inquiries" yaml:"inquiries"`
	Settings   SiteSettings     `json:"settings" yaml:"settings"`
}

// SiteSettings is the singleton holding site-wide texts and impact counters.
type SiteSettings struct {
	Mission  string      `json:"mission" yaml:"mission"`
	Vision   string      `json:"vision" yaml:"vision"`
	HeroText string      `json:"heroText" yaml:"heroText"`
	Stats    ImpactStats `json:"stats" yaml:"stats"`
}

// ImpactStats are the four counters shown on the home page.
type ImpactStats struct {
	Beneficiaries int `json:"beneficiaries" yaml:"beneficiaries"`
	Villages      int `json:"villages" yaml:"villages"`
	Volunteers    int `json:"volunteers" yaml:"volunteers"`
	Meals         int `json:"meals" yaml:"meals"`
}

// Normalize replaces nil collections with empty ones so that the encoded
// document always carries every key as an array.
func (c *SiteContent) Normalize() {
	if c.Programs == nil {
		c.Programs = []Program{}
	}
	if c.Events == nil {
		c.Events = []Event{}
	}
	if c.BlogPosts == nil {
		c.BlogPosts = []BlogPost{}
	}
	if c.Gallery == nil {
		c.Gallery = []GalleryItem{}
	}
	if c.Reports == nil {
		c.Reports = []Report{}
	}
	if c.Volunteers == nil {
		c.Volunteers = []Volunteer{}
	}
	if c.Donations == nil {
		c.Donations = []Donation{}
	}
	if c.Inquiries == nil {
		c.Inquiries = []ContactInquiry{}
	}
}

// Clone returns a copy that shares no slices with c. Records hold only
// value fields, so copying each slice is a deep copy.
func (c SiteContent) Clone() SiteContent {
	out := SiteContent{
		Programs:   append([]Program(nil), c.Programs...),
		Events:     append([]Event(nil), c.Events...),
		BlogPosts:  append([]BlogPost(nil), c.BlogPosts...),
		Gallery:    append([]GalleryItem(nil), c.Gallery...),
		Reports:    append([]Report(nil), c.Reports...),
		Volunteers: append([]Volunteer(nil), c.Volunteers...),
		Donations:  append([]Donation(nil), c.Donations...),
		Inquiries:  append([]ContactInquiry(nil), c.Inquiries...),
		Settings:   c.Settings,
	}
	out.Normalize()
	return out
}

// DashboardStats summarises the document for the admin dashboard.
type DashboardStats struct {
	TotalDonations   float64
	DonationCount    int
	Volunteers       int
	NewVolunteers    int
	Programs         int
	ActivePrograms   int
	PendingInquiries int
	BlogPosts        int
	Events           int
}

// Dashboard computes the dashboard counters.
func (c SiteContent) Dashboard() DashboardStats {
	s := DashboardStats{
		DonationCount: len(c.Donations),
		Volunteers:    len(c.Volunteers),
		Programs:      len(c.Programs),
		BlogPosts:     len(c.BlogPosts),
		Events:        len(c.Events),
	}
	for _, d := range c.Donations {
		s.TotalDonations += d.Amount
	}
	for _, v := range c.Volunteers {
		if v.Status == VolunteerNew {
			s.NewVolunteers++
		}
	}
	for _, p := range c.Programs {
		if p.Active {
			s.ActivePrograms++
		}
	}
	for _, i := range c.Inquiries {
		if i.Status == InquiryPending {
			s.PendingInquiries++
		}
	}
	return s
}
