package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/whoopsync/internal/xcontext"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger injects an enriched logger into request context.
// Must run AFTER RequestID middleware.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base
			if id, ok := xcontext.GetRequestID(r.Context()); ok {
				logger = logger.With(xslog.RequestID(id))
			}
			ctx := xslog.WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logging emits one line per request. The user group is included when the
// session middleware resolved a user further down the chain.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		holder := &userHolder{}
		r = r.WithContext(withUserHolder(r.Context(), holder))

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			xslog.RequestGroup(r),
			xslog.ResponseGroup(wrapped.status, time.Since(start)),
		}
		if holder.userID != "" {
			attrs = append(attrs, xslog.UserGroup(holder.userID))
		}

		xslog.FromContext(r.Context()).InfoContext(r.Context(), "http request", attrs...)
	})
}

// SetUser records the resolved user on the request so Logging can report it
// after the handler returns. The user is also added to the request context
// and to the context logger.
func SetUser(r *http.Request, userID string) *http.Request {
	if holder, ok := userHolderFrom(r.Context()); ok {
		holder.userID = userID
	}
	ctx := xcontext.SetWhoopUserID(r.Context(), userID)
	ctx = xslog.WithAttrs(ctx, xslog.UserID(userID))
	return r.WithContext(ctx)
}
