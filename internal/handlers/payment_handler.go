package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/payment"
	"github.com/campuscanteen/canteen-api/internal/repository"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// PaymentHandler drives reward redemption and settlement for the
// session's pending order.
type PaymentHandler struct {
	settlement *payment.Settlement
	log        *slog.Logger
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(settlement *payment.Settlement, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{settlement: settlement, log: log}
}

type redeemRequest struct {
	Points int64 `json:"points"`
}

// Redeem handles POST /api/payment/redeem
// Provisionally applies reward points to the pending order's total.
func (h *PaymentHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	ord, err := h.settlement.RedeemPoints(r.Context(), sess, req.Points)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, ord, h.log)
	case errors.Is(err, payment.ErrInvalidPoints):
		WriteError(w, http.StatusBadRequest, "Points must be non-negative", h.log)
	case errors.Is(err, payment.ErrNoPendingOrder):
		WriteError(w, http.StatusNotFound, "No order awaiting payment", h.log)
	case errors.Is(err, payment.ErrAlreadySettled):
		WriteError(w, http.StatusConflict, "Order has already been settled", h.log)
	case errors.Is(err, account.ErrInsufficientPoints):
		WriteError(w, http.StatusPaymentRequired, "Not enough reward points", h.log)
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", h.log)
	default:
		h.log.Error("failed to redeem points", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}

type settleRequest struct {
	Method string `json:"method"`
}

// Settle handles POST /api/payment/settle
// Finalizes the pending order: cash goes to PendingCash, any other
// method runs the simulated capture and returns the pickup credential.
func (h *PaymentHandler) Settle(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	receipt, err := h.settlement.Settle(r.Context(), sess, req.Method)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, receipt, h.log)
	case errors.Is(err, payment.ErrNoMethod):
		WriteError(w, http.StatusBadRequest, "Payment method is required", h.log)
	case errors.Is(err, payment.ErrNoPendingOrder):
		WriteError(w, http.StatusNotFound, "No order awaiting payment", h.log)
	case errors.Is(err, payment.ErrAlreadySettled):
		WriteError(w, http.StatusConflict, "Order has already been settled", h.log)
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", h.log)
	default:
		h.log.Error("failed to settle payment", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
