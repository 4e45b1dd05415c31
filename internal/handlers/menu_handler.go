package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscanteen/canteen-api/internal/catalog"
)

// MenuHandler serves the storefront menu.
type MenuHandler struct {
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewMenuHandler creates a menu handler.
func NewMenuHandler(cat *catalog.Catalog, log *slog.Logger) *MenuHandler {
	return &MenuHandler{catalog: cat, log: log}
}

// List handles GET /api/menu
// Returns available items sorted by category.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.catalog.MenuItems(r.Context())
	WriteJSON(w, http.StatusOK, items, h.log)
}

// Get handles GET /api/menu/{itemID}
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		WriteError(w, http.StatusBadRequest, "Item ID is required", h.log)
		return
	}

	item, err := h.catalog.MenuItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Menu item not found", h.log)
			return
		}
		h.log.Error("failed to get menu item", "item_id", itemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.log)
}
