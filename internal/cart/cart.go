package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/session"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNoPickupTime    = errors.New("pickup time is required")
	ErrAuthRequired    = errors.New("login required to place an order")
	ErrItemNotInCart   = errors.New("item is not in the cart")
)

// taxRatePercent is applied to the post-discount amount and truncated
// toward zero, so totals never carry fractional currency.
const taxRatePercent = 5

// Subtotal sums price * quantity over the cart lines.
func Subtotal(lines []models.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

// Discount returns the applied offer's discount amount, or 0.
func Discount(applied *models.AppliedOffer) int64 {
	if applied == nil {
		return 0
	}
	return applied.Discount
}

// Tax is floor((subtotal - discount) * 5%). Both inputs are
// non-negative and discount never exceeds subtotal, so integer division
// is the floor.
func Tax(subtotal, discount int64) int64 {
	return (subtotal - discount) * taxRatePercent / 100
}

// Totals is the derived money breakdown for a cart.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Compute derives all four amounts from the cart state. The round-trip
// invariant Total == Subtotal - Discount + Tax holds by construction.
// The offer's discount was sized against the cart at apply time; the
// cart may have shrunk since, so it is clamped to the current subtotal
// to keep tax and total non-negative.
func Compute(lines []models.CartLine, applied *models.AppliedOffer) Totals {
	subtotal := Subtotal(lines)
	discount := Discount(applied)
	if discount > subtotal {
		discount = subtotal
	}
	tax := Tax(subtotal, discount)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

// OrderCreator persists a finalized cart as an order.
type OrderCreator interface {
	Create(ctx context.Context, d order.Draft) (*models.Order, error)
}

// Engine maintains the active session's cart: item selections,
// quantities, and the derived totals. All operations persist the
// session and announce changes on the bus.
type Engine struct {
	sessions session.Store
	orders   OrderCreator
	bus      *events.Bus
	log      *slog.Logger
}

// NewEngine creates a cart engine.
func NewEngine(sessions session.Store, orders OrderCreator, bus *events.Bus, log *slog.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		orders:   orders,
		bus:      bus,
		log:      log,
	}
}

// AddItem puts a menu item in the cart, snapshotting its price at
// add-time. If the item is already present its quantity is adjusted by
// delta, clamped to a minimum of 1: dropping the last unit requires an
// explicit RemoveItem. A zero delta means 1.
func (e *Engine) AddItem(ctx context.Context, sess *session.Session, item models.MenuItem, delta int) error {
	if delta == 0 {
		delta = 1
	}

	found := false
	for i, l := range sess.Cart {
		if l.ItemID == item.ID {
			qty := l.Quantity + delta
			if qty < 1 {
				qty = 1
			}
			sess.Cart[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		qty := delta
		if qty < 1 {
			qty = 1
		}
		sess.Cart = append(sess.Cart, models.CartLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: qty,
		})
	}

	return e.persist(ctx, sess)
}

// RemoveItem deletes the matching cart line. Removing an absent item is
// a no-op.
func (e *Engine) RemoveItem(ctx context.Context, sess *session.Session, itemID string) error {
	for i, l := range sess.Cart {
		if l.ItemID == itemID {
			sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
			return e.persist(ctx, sess)
		}
	}
	return nil
}

// SetQuantity sets an exact quantity for a cart line. Quantities below
// 1 are rejected; use RemoveItem instead.
func (e *Engine) SetQuantity(ctx context.Context, sess *session.Session, itemID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i, l := range sess.Cart {
		if l.ItemID == itemID {
			sess.Cart[i].Quantity = qty
			return e.persist(ctx, sess)
		}
	}
	return ErrItemNotInCart
}

// Totals computes the money breakdown for the session's cart.
func (e *Engine) Totals(sess *session.Session) Totals {
	return Compute(sess.Cart, sess.AppliedOffer)
}

// Clear empties the cart and drops the applied offer.
func (e *Engine) Clear(ctx context.Context, sess *session.Session) error {
	sess.Cart = nil
	sess.AppliedOffer = nil
	return e.persist(ctx, sess)
}

// Confirm turns the cart into a persisted order. The cart must be
// non-empty, a pickup time set, and a student logged in. On success the
// new order becomes the session's pending order and the cart and
// applied offer are cleared.
func (e *Engine) Confirm(ctx context.Context, sess *session.Session, pickupTime, instructions string) (*models.Order, error) {
	if len(sess.Cart) == 0 {
		return nil, ErrEmptyCart
	}
	if pickupTime == "" {
		return nil, ErrNoPickupTime
	}
	if !sess.Authenticated() {
		return nil, ErrAuthRequired
	}

	totals := e.Totals(sess)
	lines := make([]models.CartLine, len(sess.Cart))
	copy(lines, sess.Cart)

	ord, err := e.orders.Create(ctx, order.Draft{
		StudentID:    sess.StudentID,
		Lines:        lines,
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		Tax:          totals.Tax,
		Total:        totals.Total,
		PickupTime:   pickupTime,
		Instructions: instructions,
	})
	if err != nil {
		return nil, err
	}

	sess.Cart = nil
	sess.AppliedOffer = nil
	sess.PendingOrderID = ord.ID
	if err := e.persist(ctx, sess); err != nil {
		return nil, err
	}

	e.log.Info("order confirmed", "order_id", ord.ID, "student_id", ord.StudentID, "total", ord.Total)
	return ord, nil
}

func (e *Engine) persist(ctx context.Context, sess *session.Session) error {
	if err := e.sessions.Save(ctx, sess); err != nil {
		return err
	}
	e.bus.Publish(events.Event{Topic: events.TopicCartChanged, SessionID: sess.ID})
	return nil
}
