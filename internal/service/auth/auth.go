package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/garrettladley/whoopsync/internal/client/whoop"
	intoauth "github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/storage"
	"github.com/garrettladley/whoopsync/internal/xslog"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

const exchangeTimeout = 10 * time.Second

type OAuth struct {
	config     *oauth2.Config
	stateStore storage.StateStore
	creds      repository.CredentialRepository
	syncer     xsync.Syncer
	apiOpts    []whoop.Option
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

var _ Service = (*OAuth)(nil)

type Deps struct {
	Config      *oauth2.Config
	StateStore  storage.StateStore
	Credentials repository.CredentialRepository
	Syncer      xsync.Syncer
	// APIOptions configure the client used for the profile lookup.
	APIOptions []whoop.Option
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewOAuth(deps Deps) *OAuth {
	switch {
	case deps.Config == nil:
		panic("auth: nil oauth2 config")
	case deps.StateStore == nil:
		panic("auth: nil state store")
	case deps.Credentials == nil:
		panic("auth: nil credential repository")
	case deps.Syncer == nil:
		panic("auth: nil syncer")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &OAuth{
		config:     deps.Config,
		stateStore: deps.StateStore,
		creds:      deps.Credentials,
		syncer:     deps.Syncer,
		apiOpts:    deps.APIOptions,
		httpClient: deps.HTTPClient,
		now:        time.Now,
		logger:     deps.Logger,
	}
}

func (s *OAuth) StartAuth(ctx context.Context) (*StartAuthResult, error) {
	state, err := intoauth.GenerateState()
	if err != nil {
		return nil, &AuthError{Code: intoauth.ErrorCodeAuthRedirectFailed, Reason: "state_generation_failed", Err: err}
	}

	entry := storage.StateEntry{CreatedAt: s.now()}
	if err := s.stateStore.Set(ctx, state, entry, intoauth.StateTTL); err != nil {
		return nil, &AuthError{Code: intoauth.ErrorCodeAuthRedirectFailed, Reason: "state_store_failed", Err: err}
	}

	return &StartAuthResult{
		AuthURL: s.config.AuthCodeURL(state),
		State:   state,
	}, nil
}

func (s *OAuth) HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.Error != "" {
		return nil, &AuthError{Code: intoauth.ErrorCodeAuthFailed, Reason: req.Error}
	}
	if req.Code == "" {
		return nil, &AuthError{Code: intoauth.ErrorCodeAuthFailed, Reason: intoauth.ReasonNoCode}
	}

	if req.State == "" {
		return nil, &AuthError{Code: intoauth.ErrorCodeAuthFailed, Reason: intoauth.ReasonInvalidState}
	}
	if _, err := s.stateStore.GetAndDelete(ctx, req.State); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &AuthError{Code: intoauth.ErrorCodeAuthFailed, Reason: intoauth.ReasonInvalidState}
		}
		return nil, &AuthError{Code: intoauth.ErrorCodeCallbackException, Reason: "state_lookup_failed", Err: err}
	}

	token, err := s.exchange(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	userID := s.resolveUserID(ctx, token)
	if userID == "" {
		return nil, &AuthError{Code: intoauth.ErrorCodeUserIDMissing}
	}

	cred := &repository.Credential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    intoauth.Expiry(token, s.now()),
	}
	if err := s.creds.Upsert(ctx, cred); err != nil {
		return nil, &AuthError{Code: intoauth.ErrorCodeDBTokenSaveFailed, Err: err}
	}

	logger := s.logger.With(xslog.UserID(userID))
	logger.InfoContext(ctx, "stored credentials after login", xslog.ExpiresAt(cred.ExpiresAt))

	synced := s.syncer.SyncUser(ctx, userID)
	if !synced {
		logger.WarnContext(ctx, "initial sync after login stored nothing")
	}

	return &CallbackResult{UserID: userID, Synced: synced}, nil
}

func (s *OAuth) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := s.config.Exchange(ctx, code)
	if err == nil {
		return token, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return nil, &AuthError{
			Code:   intoauth.ErrorCodeTokenExchangeFailed,
			Reason: strconv.Itoa(retrieveErr.Response.StatusCode),
			Err:    err,
		}
	}
	return nil, &AuthError{Code: intoauth.ErrorCodeTokenExchangeFailed, Reason: intoauth.ReasonRequestFailed, Err: err}
}

// resolveUserID takes the first id found in the token response's user
// object, its top-level user_id, then the basic profile endpoint.
func (s *OAuth) resolveUserID(ctx context.Context, token *oauth2.Token) string {
	if user, ok := token.Extra("user").(map[string]any); ok {
		if id := idString(user["id"]); id != "" {
			return id
		}
	}
	if id := idString(token.Extra("user_id")); id != "" {
		return id
	}

	client := whoop.NewWithAccessToken(token.AccessToken, s.apiOpts...)
	profile, err := client.User.GetProfile(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch profile for user id", xslog.Error(err))
		return ""
	}
	return profile.ID()
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id == 0 {
			return ""
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		if id == 0 {
			return ""
		}
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
