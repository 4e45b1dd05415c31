package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuscanteen/canteen-api/internal/session"
)

// SessionHeader carries the browsing-session token. The middleware
// echoes it back on every response so a fresh client can pick up the
// token it was assigned.
const SessionHeader = "X-Session-Token"

// WithSession resolves the request's browsing session, creating one
// when the token is absent or unknown, and attaches it to the request
// context.
func WithSession(store session.Store, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session

			if token := r.Header.Get(SessionHeader); token != "" {
				s, err := store.Get(r.Context(), token)
				switch {
				case err == nil:
					sess = s
				case errors.Is(err, session.ErrSessionNotFound):
					// Stale token; fall through and issue a new session.
				default:
					log.Error("session lookup failed", "error", err)
					http.Error(w, "session store unavailable", http.StatusInternalServerError)
					return
				}
			}

			if sess == nil {
				sess = session.NewSession()
				if err := store.Save(r.Context(), sess); err != nil {
					log.Error("session create failed", "error", err)
					http.Error(w, "session store unavailable", http.StatusInternalServerError)
					return
				}
			}

			w.Header().Set(SessionHeader, sess.ID)
			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}
