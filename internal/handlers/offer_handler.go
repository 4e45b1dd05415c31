package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/offer"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// OfferHandler serves the offer list and applies codes to carts.
type OfferHandler struct {
	catalog   *catalog.Catalog
	evaluator *offer.Evaluator
	log       *slog.Logger
}

// NewOfferHandler creates an offer handler.
func NewOfferHandler(cat *catalog.Catalog, eval *offer.Evaluator, log *slog.Logger) *OfferHandler {
	return &OfferHandler{catalog: cat, evaluator: eval, log: log}
}

// ListActive handles GET /api/offers
// Returns offers currently inside their validity window.
func (h *OfferHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	offers := h.catalog.ActiveOffers(r.Context(), time.Now().UTC())
	WriteJSON(w, http.StatusOK, offers, h.log)
}

type applyOfferRequest struct {
	Code string `json:"code"`
}

type applyOfferResponse struct {
	Discount int64 `json:"discount"`
}

// Apply handles POST /api/cart/offer
// Installs a single applied offer on the session, replacing any prior
// one, and returns the computed discount.
func (h *OfferHandler) Apply(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var req applyOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	discount, err := h.evaluator.ApplyCode(r.Context(), sess, req.Code)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, applyOfferResponse{Discount: discount}, h.log)
	case errors.Is(err, offer.ErrNotFound):
		WriteError(w, http.StatusNotFound, "The offer code you entered is not valid", h.log)
	case errors.Is(err, offer.ErrNotYetActive):
		WriteError(w, http.StatusBadRequest, "This offer is not active yet", h.log)
	case errors.Is(err, offer.ErrExpired):
		WriteError(w, http.StatusGone, "This offer has expired", h.log)
	default:
		h.log.Error("failed to apply offer", "code", req.Code, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}
