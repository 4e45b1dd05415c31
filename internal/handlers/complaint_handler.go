package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuscanteen/canteen-api/internal/complaint"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// ComplaintHandler lets students file and review complaints.
type ComplaintHandler struct {
	complaints *complaint.Service
	log        *slog.Logger
}

// NewComplaintHandler creates a complaint handler.
func NewComplaintHandler(complaints *complaint.Service, log *slog.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, log: log}
}

type fileComplaintRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Create handles POST /api/complaints
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	var req fileComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		p, err := models.ParsePriority(req.Priority)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Priority must be Low, Medium or High", h.log)
			return
		}
		priority = p
	}

	c, err := h.complaints.File(r.Context(), sess.StudentID, req.Subject, req.Description, priority)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusCreated, c, h.log)
	case errors.Is(err, complaint.ErrMissingFields):
		WriteError(w, http.StatusBadRequest, "Subject and description are required", h.log)
	default:
		h.log.Error("failed to file complaint", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}

// ListMine handles GET /api/complaints
func (h *ComplaintHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	complaints, err := h.complaints.ListByStudent(r.Context(), sess.StudentID)
	if err != nil {
		h.log.Error("failed to list complaints", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, complaints, h.log)
}
