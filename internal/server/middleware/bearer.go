package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/garrettladley/whoopsync/internal/xerrors"
	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

// CronAuth admits requests carrying "Authorization: Bearer <secret>".
func CronAuth(secret string) func(http.Handler) http.Handler {
	expected := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := xhttp.GetBearerToken(r)
			if !ok || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
				xslog.FromContext(r.Context()).WarnContext(r.Context(), "rejected cron request",
					xslog.RequestPath(r),
					xslog.RequestIP(r))
				xerrors.WriteError(r.Context(), w, xerrors.Unauthorized(
					xerrors.WithCode("unauthorized"),
					xerrors.WithMessage("Unauthorized"),
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
