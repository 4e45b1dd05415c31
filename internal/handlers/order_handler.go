package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/repository"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// OrderHandler serves the student's order history. The admin projection
// lives on the admin routes.
type OrderHandler struct {
	orders *order.Manager
	log    *slog.Logger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *order.Manager, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// ListMine handles GET /api/orders
// Orders are polled snapshots: cross-view freshness against the admin
// console is bounded by the client's refresh interval, not guaranteed.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	orders, err := h.orders.ListByStudent(r.Context(), sess.StudentID)
	if err != nil {
		h.log.Error("failed to list orders", "student_id", sess.StudentID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// Get handles GET /api/orders/{orderID}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	ord, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}
		h.log.Error("failed to get order", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	// Students only see their own orders.
	if ord.StudentID != sess.StudentID {
		WriteError(w, http.StatusNotFound, "Order not found", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, ord, h.log)
}
