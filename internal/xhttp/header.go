package xhttp

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	XXSSProtection   = "X-Xss-Protection"
	ReferrerPolicy   = "Referrer-Policy"
	XRateLimitReason = "X-RateLimit-Reason"
	XWhoopUserID     = "X-Whoop-User-ID"
)

const (
	Authorization   = "Authorization"
	ContentType     = "Content-Type"
	ContentEncoding = "Content-Encoding"
	ContentLength   = "Content-Length"
	AcceptEncoding  = "Accept-Encoding"
	Vary            = "Vary"
	UserAgent       = "User-Agent"
	CacheControl    = "Cache-Control"
	XRequestID      = "X-Request-ID"
)

const bearerPrefix = "Bearer "

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

func GetRequestHeaderRequestID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(XRequestID))
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	const applicationJSON = "application/json"
	w.Header().Set(ContentType, applicationJSON)
}

func SetHeaderRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	const retryAfterHeader = "Retry-After"
	retryAfterSeconds := int(retryAfter.Seconds())
	w.Header().Set(retryAfterHeader, fmt.Sprintf("%d", retryAfterSeconds))
}

// GetBearerToken returns the token from an "Authorization: Bearer <token>" header.
func GetBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(Authorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}
