package auth

import (
	"context"
	"fmt"

	intoauth "github.com/garrettladley/whoopsync/internal/oauth"
)

type StartAuthResult struct {
	AuthURL string
	State   string
}

type CallbackRequest struct {
	Code  string
	State string
	// Error is the provider's error parameter, set when the user declined.
	Error string
}

type CallbackResult struct {
	UserID string
	Synced bool
}

// AuthError is the only error type HandleCallback returns. Code and Reason
// are shown to the browser as query parameters.
type AuthError struct {
	Code   intoauth.ErrorCode
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	msg := string(e.Code)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type Service interface {
	// StartAuth stores a fresh state and returns the provider's consent URL.
	// Returns *AuthError with code auth_redirect_failed if the state cannot be stored.
	StartAuth(ctx context.Context) (*StartAuthResult, error)

	// HandleCallback completes the authorization code grant, stores the
	// credential and runs one sync for the user.
	// Returns *AuthError with one of:
	//   - auth_failed when the provider returned an error, the code is missing, or the state is invalid
	//   - token_exchange_failed when the token endpoint rejects the code or cannot be reached
	//   - user_id_missing when no user id can be determined
	//   - db_token_save_failed when the credential cannot be stored
	//   - oauth_callback_exception for anything unexpected
	HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}
