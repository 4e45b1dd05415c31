package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the explicit per-browsing-session context passed to every
// core operation. It replaces ambient key-value storage: the cart, the
// applied offer, the authenticated student and the order awaiting
// payment all live here, owned by a single logical user.
type Session struct {
	ID             string               `json:"id"`
	StudentID      string               `json:"studentId,omitempty"`
	Cart           []models.CartLine    `json:"cart"`
	AppliedOffer   *models.AppliedOffer `json:"appliedOffer,omitempty"`
	PendingOrderID string               `json:"pendingOrderId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
}

// Authenticated reports whether a student is logged in on this session.
func (s *Session) Authenticated() bool {
	return s.StudentID != ""
}

// Store persists sessions keyed by their identifier. Writes are
// last-write-wins: one logical user per session, no concurrent-write
// protocol.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithContext attaches a session to a request context.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
