// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// VolunteerStatus tracks a volunteer application.
type VolunteerStatus string

// Volunteer statuses.
const (
	VolunteerNew       VolunteerStatus = "New"
	VolunteerContacted VolunteerStatus = "Contacted"
	VolunteerActive    VolunteerStatus = "Active"
	VolunteerRejected  VolunteerStatus = "Rejected"
)

// VolunteerStatuses lists statuses in workflow order.
var VolunteerStatuses = []VolunteerStatus{VolunteerNew, VolunteerContacted, VolunteerActive, VolunteerRejected}

// Valid reports whether s is a known status.
func (s VolunteerStatus) Valid() bool {
	for _, v := range VolunteerStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InquiryStatus tracks a contact inquiry.
type InquiryStatus string

// Inquiry statuses.
const (
	InquiryPending  InquiryStatus = "Pending"
	InquiryResolved InquiryStatus = "Resolved"
)

// Valid reports whether s is a known status.
func (s InquiryStatus) Valid() bool {
	return s == InquiryPending || s == InquiryResolved
}

// Volunteer is a public volunteer application.
type Volunteer struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Age          int             `json:"age" yaml:"age"`
	Phone        string          `json:"phone" yaml:"phone"`
	Email        string          `json:"email" yaml:"email"`
	City         string          `json:"city" yaml:"city"`
	Interest     string          `json:"interest" yaml:"interest"`
	Availability string          `json:"availability" yaml:"availability"`
	Status       VolunteerStatus `json:"status" yaml:"status"`
	SubmittedAt  string          `json:"submittedAt" yaml:"submittedAt"`
}

// GetID implements Record.
func (v Volunteer) GetID() string { return v.ID }

// Donation is a public donation pledge. Immutable once stored.
type Donation struct {
	ID        string  `json:"id" yaml:"id"`
	DonorName string  `json:"donorName" yaml:"donorName"`
	Email     string  `json:"email" yaml:"email"`
	Phone     string  `json:"phone" yaml:"phone"`
	Amount    float64 `json:"amount" yaml:"amount"`
	Purpose   string  `json:"purpose" yaml:"purpose"`
	Date      string  `json:"date" yaml:"date"`
}

// GetID implements Record.
func (d Donation) GetID() string { return d.ID }

// ContactInquiry is a message sent through the contact form.
type ContactInquiry struct {
	ID      string        `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Email   string        `json:"email" yaml:"email"`
	Phone   string        `json:"phone" yaml:"phone"`
	Message string        `json:"message" yaml:"message"`
	Status  InquiryStatus `json:"status" yaml:"status"`
	Date    string        `json:"date" yaml:"date"`
}

// GetID implements Record.
func (c ContactInquiry) GetID() string { return c.ID }

// DonationInput is a donation without its assigned fields.
type DonationInput struct {
	DonorName string
	Email     string
	Phone     string
	Amount    float64
	Purpose   string
}

// VolunteerInput is a volunteer application without its assigned fields.
type VolunteerInput struct {
	Name         string
	Age          int
	Phone        string
	Email        string
	City         string
	Interest     string
	Availability string
}

// InquiryInput is a contact inquiry without its assigned fields.
type InquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// DonationPurposes are offered on the donation form.
var DonationPurposes = []string{"General", "Education", "Health", "Women Empowerment", "Disaster Relief"}
