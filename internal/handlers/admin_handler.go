package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/complaint"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/offer"
	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/repository"
)

// AdminHandler is the admin console surface: order status updates,
// catalog editing, and the student/complaint projections. All routes
// sit behind the admin API-key middleware.
type AdminHandler struct {
	orders     *order.Manager
	catalog    *catalog.Catalog
	evaluator  *offer.Evaluator
	accounts   *account.Store
	complaints *complaint.Service
	log        *slog.Logger
}

// NewAdminHandler creates the admin console handler.
func NewAdminHandler(orders *order.Manager, cat *catalog.Catalog, eval *offer.Evaluator,
	accounts *account.Store, complaints *complaint.Service, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:     orders,
		catalog:    cat,
		evaluator:  eval,
		accounts:   accounts,
		complaints: complaints,
		log:        log,
	}
}

// ListOrders handles GET /api/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.log.Error("failed to list orders", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.log)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles PUT /api/admin/orders/{orderID}/status
// Any status from the closed set is accepted, including leaving a
// terminal state: that override is the operational escape hatch.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Unknown order status", h.log)
		return
	}

	ord, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}
		h.log.Error("failed to update order status", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, ord, h.log)
}

// ListMenu handles GET /api/admin/menu
// Includes soft-deleted items.
func (h *AdminHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.AllMenuItems(r.Context()), h.log)
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Veg         bool   `json:"veg"`
	Available   *bool  `json:"available,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

// CreateMenuItem handles POST /api/admin/menu
func (h *AdminHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	item, err := h.catalog.CreateMenuItem(r.Context(), models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Veg:         req.Veg,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	WriteJSON(w, http.StatusCreated, item, h.log)
}

// UpdateMenuItem handles PUT /api/admin/menu/{itemID}
func (h *AdminHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	err := h.catalog.UpdateMenuItem(r.Context(), models.MenuItem{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Veg:         req.Veg,
		Available:   available,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"}, h.log)
}

// DeleteMenuItem handles DELETE /api/admin/menu/{itemID}
// Soft delete: the item stays resolvable for historical orders.
func (h *AdminHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := h.catalog.RemoveMenuItem(r.Context(), itemID); err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
			return
		}
		h.log.Error("failed to remove menu item", "item_id", itemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"}, h.log)
}

// ListOffers handles GET /api/admin/offers
func (h *AdminHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.catalog.Offers(r.Context()), h.log)
}

type offerRequest struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Percentage  int    `json:"percentage"`
	ValidFrom   string `json:"validFrom"`
	ValidUntil  string `json:"validUntil"`
	Active      *bool  `json:"active,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

func (req *offerRequest) toModel(id string) (models.Offer, error) {
	from, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		return models.Offer{}, errors.New("validFrom must be YYYY-MM-DD")
	}
	until, err := time.Parse("2006-01-02", req.ValidUntil)
	if err != nil {
		return models.Offer{}, errors.New("validUntil must be YYYY-MM-DD")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return models.Offer{
		ID:          id,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Percentage:  req.Percentage,
		ValidFrom:   from,
		ValidUntil:  until,
		Active:      active,
		ImageURL:    req.ImageURL,
	}, nil
}

// CreateOffer handles POST /api/admin/offers
func (h *AdminHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	o, err := req.toModel("")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	created, err := h.catalog.CreateOffer(r.Context(), o)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	// New codes must pass the evaluator's prefilter immediately.
	h.evaluator.Rebuild(r.Context())
	WriteJSON(w, http.StatusCreated, created, h.log)
}

// UpdateOffer handles PUT /api/admin/offers/{offerID}
func (h *AdminHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerID")

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	o, err := req.toModel(offerID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	if err := h.catalog.UpdateOffer(r.Context(), o); err != nil {
		if errors.Is(err, catalog.ErrOfferNotFound) {
			WriteError(w, http.StatusNotFound, "Offer not found", h.log)
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	h.evaluator.Rebuild(r.Context())
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"}, h.log)
}

// DeleteOffer handles DELETE /api/admin/offers/{offerID}
func (h *AdminHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerID")

	if err := h.catalog.DeleteOffer(r.Context(), offerID); err != nil {
		if errors.Is(err, catalog.ErrOfferNotFound) {
			WriteError(w, http.StatusNotFound, "Offer not found", h.log)
			return
		}
		h.log.Error("failed to delete offer", "offer_id", offerID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	h.evaluator.Rebuild(r.Context())
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, h.log)
}

// ListStudents handles GET /api/admin/students
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.accounts.List(r.Context())
	if err != nil {
		h.log.Error("failed to list students", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, students, h.log)
}

// ListComplaints handles GET /api/admin/complaints
func (h *AdminHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.ListAll(r.Context())
	if err != nil {
		h.log.Error("failed to list complaints", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, complaints, h.log)
}

// UpdateComplaintStatus handles PUT /api/admin/complaints/{complaintID}/status
func (h *AdminHandler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	complaintID := chi.URLParam(r, "complaintID")

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	status, err := models.ParseComplaintStatus(req.Status)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Unknown complaint status", h.log)
		return
	}

	c, err := h.complaints.UpdateStatus(r.Context(), complaintID, status)
	if err != nil {
		if errors.Is(err, repository.ErrComplaintNotFound) {
			WriteError(w, http.StatusNotFound, "Complaint not found", h.log)
			return
		}
		h.log.Error("failed to update complaint", "complaint_id", complaintID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, c, h.log)
}
