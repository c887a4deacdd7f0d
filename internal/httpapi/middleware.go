package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user_id"}

// requireAuth verifies the access token cookie and stashes the caller's user
// id in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil || cookie.Value == "" {
			fail(w, http.StatusUnauthorized, s.msgs.Render("error.unauthorized", nil))
			return
		}
		userID, err := s.tokens.Verify(cookie.Value)
		if err != nil {
			fail(w, http.StatusUnauthorized, s.msgs.Render("error.unauthorized", nil))
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return id, ok
}
