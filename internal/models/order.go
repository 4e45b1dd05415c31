package models

import (
	"fmt"
	"time"
)

// Status is the closed set of order lifecycle states.
// Pending -> {Preparing, PendingCash} -> Ready -> Completed, with Cancelled
// reachable from any non-terminal state.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusPendingCash Status = "PendingCash"
	StatusPreparing   Status = "Preparing"
	StatusReady       Status = "Ready"
	StatusCompleted   Status = "Completed"
	StatusCancelled   Status = "Cancelled"
)

// ParseStatus validates a raw status string against the closed set,
// so stray strings never reach persisted records.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPendingCash, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether the status ends the order lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CartLine is one selected menu item with an add-time price snapshot.
// The snapshot keeps cart totals stable even if the catalog price
// changes before checkout.
type CartLine struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Order is an immutable snapshot of a confirmed purchase, tracked
// through the status lifecycle. Orders are never deleted (audit trail).
type Order struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	Lines          []CartLine `json:"lines"`
	Subtotal       int64      `json:"subtotal"`
	Discount       int64      `json:"discount"`
	Tax            int64      `json:"tax"`
	Total          int64      `json:"total"`
	PickupTime     string     `json:"pickupTime"`
	Instructions   string     `json:"instructions,omitempty"`
	Status         Status     `json:"status"`
	PaymentMethod  string     `json:"paymentMethod,omitempty"`
	RedeemedPoints int64      `json:"redeemedPoints"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
