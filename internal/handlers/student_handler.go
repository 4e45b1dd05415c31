package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/repository"
	"github.com/campuscanteen/canteen-api/internal/session"
)

// StudentHandler covers registration, login and the profile view.
type StudentHandler struct {
	accounts *account.Store
	sessions session.Store
	log      *slog.Logger
}

// NewStudentHandler creates a student handler.
func NewStudentHandler(accounts *account.Store, sessions session.Store, log *slog.Logger) *StudentHandler {
	return &StudentHandler{accounts: accounts, sessions: sessions, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Roll     string `json:"roll"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/students/register
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	acct, err := h.accounts.Register(r.Context(), req.Name, req.Roll, req.Email, req.Password)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusCreated, acct, h.log)
	case errors.Is(err, account.ErrMissingFields):
		WriteError(w, http.StatusBadRequest, "Name, roll, email and password are required", h.log)
	case errors.Is(err, account.ErrRollTaken):
		WriteError(w, http.StatusConflict, "Roll number already registered", h.log)
	case errors.Is(err, account.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "Email already registered", h.log)
	default:
		h.log.Error("failed to register student", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}

type loginRequest struct {
	Roll     string `json:"roll"`
	Password string `json:"password"`
}

// Login handles POST /api/students/login
// Binds the authenticated student to the browsing session.
func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	acct, err := h.accounts.Authenticate(r.Context(), req.Roll, req.Password)
	switch {
	case err == nil:
		sess.StudentID = acct.Roll
		if err := h.sessions.Save(r.Context(), sess); err != nil {
			h.log.Error("failed to bind student to session", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
			return
		}
		WriteJSON(w, http.StatusOK, acct, h.log)
	case errors.Is(err, repository.ErrStudentNotFound):
		WriteError(w, http.StatusNotFound, "Student not found. Please register first.", h.log)
	case errors.Is(err, account.ErrBadCredentials):
		WriteError(w, http.StatusUnauthorized, "Incorrect password", h.log)
	default:
		h.log.Error("failed to authenticate student", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
	}
}

// Logout handles POST /api/students/logout
func (h *StudentHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	sess.StudentID = ""

	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.log.Error("failed to clear session binding", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"}, h.log)
}

// Me handles GET /api/students/me
// Returns the logged-in student's profile with the reward balance.
func (h *StudentHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "Login required", h.log)
		return
	}

	acct, err := h.accounts.Get(r.Context(), sess.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			WriteError(w, http.StatusNotFound, "Student not found", h.log)
			return
		}
		h.log.Error("failed to load student profile", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, acct, h.log)
}
