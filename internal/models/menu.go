package models

import "time"

// MenuItem represents a dish or beverage available for order.
// Prices are whole rupees (smallest currency unit).
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Veg         bool      `json:"veg"`
	Available   bool      `json:"available"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
