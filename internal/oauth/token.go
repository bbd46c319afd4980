package oauth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/garrettladley/whoopsync/internal/apperr"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const (
	opActiveAccessToken = "oauth.ActiveAccessToken"

	// refreshSkew is subtracted from now before comparing against the stored
	// expiry.
	refreshSkew = 5 * time.Minute
)

var ErrNoCredentials = apperr.NotFound(opActiveAccessToken, "no stored credentials for user")

// TokenProvider yields a usable access token for a user.
type TokenProvider interface {
	// ActiveAccessToken returns the stored access token, refreshing it first
	// when NeedsRefresh says so.
	//
	// Returns:
	//   - ErrNoCredentials if the user never completed OAuth
	//   - *apperr.Error of KindUpstreamAuth if the refresh was rejected
	//   - *apperr.Error of KindStorage if the credential could not be read or saved
	ActiveAccessToken(ctx context.Context, userID string) (string, error)
}

var _ TokenProvider = (*Refresher)(nil)

type Refresher struct {
	config *oauth2.Config
	creds  repository.CredentialRepository
	client *http.Client
	now    func() time.Time
}

type RefresherOption func(*Refresher)

func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) {
		r.now = now
	}
}

func WithHTTPClient(client *http.Client) RefresherOption {
	return func(r *Refresher) {
		r.client = client
	}
}

func NewRefresher(config *oauth2.Config, creds repository.CredentialRepository, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		config: config,
		creds:  creds,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NeedsRefresh reports whether a token expiring at expiresAt is stale.
// The window looks backwards: a token is refreshed only once it has been
// expired for more than refreshSkew.
func NeedsRefresh(expiresAt time.Time, now time.Time) bool {
	return expiresAt.Before(now.Add(-refreshSkew))
}

func (r *Refresher) ActiveAccessToken(ctx context.Context, userID string) (string, error) {
	cred, err := r.creds.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrNoCredentials
	}
	if err != nil {
		return "", apperr.Storage(opActiveAccessToken, err)
	}

	now := r.now()
	if !NeedsRefresh(cred.ExpiresAt, now) {
		return cred.AccessToken, nil
	}

	logger := xslog.FromContext(ctx)
	logger.InfoContext(ctx, "refreshing access token",
		xslog.UserID(userID),
		xslog.ExpiresAt(cred.ExpiresAt),
	)

	tok, err := r.refresh(ctx, cred.RefreshToken)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			logger.WarnContext(ctx, "token endpoint rejected refresh",
				xslog.UserID(userID),
				xslog.HTTPStatus(retrieveErr.Response.StatusCode),
			)
		}
		return "", apperr.UpstreamAuth(opActiveAccessToken, err)
	}

	refreshed := &repository.Credential{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    Expiry(tok, now),
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}

	if err := r.creds.Upsert(ctx, refreshed); err != nil {
		return "", apperr.Storage(opActiveAccessToken, err)
	}

	logger.InfoContext(ctx, "access token refreshed",
		xslog.UserID(userID),
		xslog.ExpiresAt(refreshed.ExpiresAt),
	)
	return refreshed.AccessToken, nil
}

func (r *Refresher) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if r.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	}
	// An empty access token forces the source to hit the token endpoint.
	return r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}

// Expiry computes the absolute expiry of tok relative to now. A response
// without expires_in expires immediately.
func Expiry(tok *oauth2.Token, now time.Time) time.Time {
	if secs, ok := expiresIn(tok.Extra("expires_in")); ok {
		return now.Add(time.Duration(secs) * time.Second)
	}
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}
	return now
}

func expiresIn(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n > 0
	case int64:
		return n, n > 0
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil && i > 0
	default:
		return 0, false
	}
}
