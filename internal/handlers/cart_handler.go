package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscanteen/canteen-api/internal/cart"
	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// CartHandler exposes the cart engine over HTTP. Every route operates
// on the browsing session resolved by the session middleware.
type CartHandler struct {
	engine  *cart.Engine
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(engine *cart.Engine, cat *catalog.Catalog, log *slog.Logger) *CartHandler {
	return &CartHandler{engine: engine, catalog: cat, log: log}
}

// cartView is the cart state returned after every mutation.
type cartView struct {
	Lines        []models.CartLine    `json:"lines"`
	AppliedOffer *models.AppliedOffer `json:"appliedOffer,omitempty"`
	Totals       cart.Totals          `json:"totals"`
}

func (h *CartHandler) view(sess *session.Session) cartView {
	lines := sess.Cart
	if lines == nil {
		lines = []models.CartLine{}
	}
	return cartView{
		Lines:        lines,
		AppliedOffer: sess.AppliedOffer,
		Totals:       h.engine.Totals(sess),
	}
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	WriteJSON(w, http.StatusOK, h.view(sess), h.log)
}

type addItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// AddItem handles POST /api/cart/items
// Quantity is a delta and defaults to 1.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	item, err := h.catalog.MenuItem(r.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
			return
		}
		h.log.Error("failed to resolve menu item", "item_id", req.ItemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	if err := h.engine.AddItem(r.Context(), sess, *item, req.Quantity); err != nil {
		h.log.Error("failed to add item to cart", "item_id", req.ItemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, h.view(sess), h.log)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity handles PUT /api/cart/items/{itemID}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	err := h.engine.SetQuantity(r.Context(), sess, itemID, req.Quantity)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, h.view(sess), h.log)
	case errors.Is(err, cart.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be at least 1; remove the item instead", h.log)
	case errors.Is(err, cart.ErrItemNotInCart):
		WriteError(w, http.StatusNotFound, "Item is not in the cart", h.log)
	default:
		h.log.Error("failed to set quantity", "item_id", itemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}

// RemoveItem handles DELETE /api/cart/items/{itemID}
// Removing an absent item succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	if err := h.engine.RemoveItem(r.Context(), sess, itemID); err != nil {
		h.log.Error("failed to remove item", "item_id", itemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, h.view(sess), h.log)
}

type confirmRequest struct {
	PickupTime   string `json:"pickupTime"`
	Instructions string `json:"instructions"`
}

// Confirm handles POST /api/cart/confirm
// Turns the cart into a pending order awaiting payment.
func (h *CartHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	ord, err := h.engine.Confirm(r.Context(), sess, req.PickupTime, req.Instructions)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusCreated, ord, h.log)
	case errors.Is(err, cart.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "Cart is empty", h.log)
	case errors.Is(err, cart.ErrNoPickupTime):
		WriteError(w, http.StatusBadRequest, "Pickup time is required", h.log)
	case errors.Is(err, cart.ErrAuthRequired):
		WriteError(w, http.StatusUnauthorized, "Login required to place an order", h.log)
	default:
		h.log.Error("failed to confirm order", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
