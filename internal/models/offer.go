package models

import "time"

// Offer is a discount rule identified by a code, valid inside a date window.
// Offers are created and edited by admins and read-only to the ordering flow.
type Offer struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Percentage  int       `json:"percentage"`
	ValidFrom   time.Time `json:"validFrom"`
	ValidUntil  time.Time `json:"validUntil"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AppliedOffer is the single active discount affecting a cart.
// Applying a new offer replaces the prior one; it never stacks.
type AppliedOffer struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Percentage int    `json:"percentage"`
	Discount   int64  `json:"discount"`
}
