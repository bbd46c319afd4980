package middleware

import (
	"net/http"

	"github.com/garrettladley/whoopsync/internal/xcontext"
	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/google/uuid"
)

const maxIncomingRequestIDLength = 128

type RequestIDMiddleware struct {
	IDFunc func(*http.Request) string
	// TrustIncoming reuses a caller-provided X-Request-ID, e.g. from a load balancer.
	TrustIncoming bool
}

type RequestIDOption func(*RequestIDMiddleware)

func WithIDFunc(fn func(*http.Request) string) RequestIDOption {
	return func(m *RequestIDMiddleware) { m.IDFunc = fn }
}

func WithTrustIncoming() RequestIDOption {
	return func(m *RequestIDMiddleware) { m.TrustIncoming = true }
}

func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	middleware := &RequestIDMiddleware{
		IDFunc: func(_ *http.Request) string {
			return uuid.New().String()
		},
	}

	for _, opt := range opts {
		opt(middleware)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if middleware.TrustIncoming {
				id = xhttp.GetRequestHeaderRequestID(r)
				if len(id) > maxIncomingRequestIDLength {
					id = ""
				}
			}
			if id == "" {
				id = middleware.IDFunc(r)
			}
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
