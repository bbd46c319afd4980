// Package identity answers "which WHOOP user is making this request"
// independently of how the request arrived.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/garrettladley/whoopsync/internal/xcontext"
	"github.com/garrettladley/whoopsync/internal/xhttp"
)

type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

var (
	_ Provider = Context{}
	_ Provider = Header{}
	_ Provider = Static("")
	_ Provider = Chain(nil)
)

// Context reads the user placed on the context by the session middleware.
type Context struct{}

func (Context) CurrentUserID(ctx context.Context) (string, bool) {
	userID, ok := xcontext.GetWhoopUserID(ctx)
	return userID, ok && userID != ""
}

type headerKey struct{}

// WithHeader makes the request headers visible to Header.
func WithHeader(ctx context.Context, h http.Header) context.Context {
	return context.WithValue(ctx, headerKey{}, h)
}

// Header trusts a user id header set by an internal caller. Name defaults
// to X-Whoop-User-ID.
type Header struct {
	Name string
}

func (h Header) CurrentUserID(ctx context.Context) (string, bool) {
	headers, ok := ctx.Value(headerKey{}).(http.Header)
	if !ok {
		return "", false
	}
	name := h.Name
	if name == "" {
		name = xhttp.XWhoopUserID
	}
	userID := strings.TrimSpace(headers.Get(name))
	return userID, userID != ""
}

// Static always reports the same user. An empty Static reports none.
type Static string

func (s Static) CurrentUserID(context.Context) (string, bool) {
	return string(s), s != ""
}

// Chain returns the first provider's match.
type Chain []Provider

func (c Chain) CurrentUserID(ctx context.Context) (string, bool) {
	for _, p := range c {
		if userID, ok := p.CurrentUserID(ctx); ok {
			return userID, true
		}
	}
	return "", false
}
