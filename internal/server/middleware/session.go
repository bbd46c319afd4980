package middleware

import (
	"net/http"

	"github.com/garrettladley/whoopsync/internal/identity"
	"github.com/garrettladley/whoopsync/internal/session"
	"github.com/garrettladley/whoopsync/internal/xhttp/middleware"
)

// Session resolves the signed session cookie into the request context.
// Requests without a valid cookie pass through anonymously; handlers decide
// whether a user is required. Request headers are attached for identity.Header.
func Session(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(identity.WithHeader(r.Context(), r.Header))
			if userID, ok := sessions.UserID(r); ok {
				r = middleware.SetUser(r, userID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
