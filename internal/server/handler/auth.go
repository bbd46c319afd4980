package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/service/auth"
	"github.com/garrettladley/whoopsync/internal/session"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const (
	homePath    = "/"
	profilePath = "/profile"

	maxReasonLength = 100
)

type Auth struct {
	service  auth.Service
	sessions *session.Manager
}

func NewAuth(service auth.Service, sessions *session.Manager) *Auth {
	return &Auth{service: service, sessions: sessions}
}

// HandleAuthStart handles GET /auth/start requests.
func (h *Auth) HandleAuthStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.StartAuth(ctx)
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to start auth", xslog.Error(err))

		reason := "unknown_error"
		var authErr *auth.AuthError
		if errors.As(err, &authErr) && authErr.Reason != "" {
			reason = authErr.Reason
		}
		redirectWithError(w, r, oauth.ErrorCodeAuthRedirectFailed, reason)
		return
	}

	http.Redirect(w, r, result.AuthURL, http.StatusTemporaryRedirect)
}

// HandleAuthCallback handles GET /auth/callback requests.
func (h *Auth) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)
	q := r.URL.Query()

	req := auth.CallbackRequest{
		Code:  q.Get(oauth.ParamCode),
		State: q.Get(oauth.ParamState),
		Error: q.Get(oauth.ParamError),
	}

	result, err := h.service.HandleCallback(ctx, req)
	if err != nil {
		var authErr *auth.AuthError
		if errors.As(err, &authErr) {
			logger.WarnContext(ctx, "auth callback failed", xslog.ErrorGroup(err))
			redirectWithError(w, r, authErr.Code, authErr.Reason)
			return
		}

		logger.ErrorContext(ctx, "auth callback error", xslog.ErrorGroup(err))
		redirectWithError(w, r, oauth.ErrorCodeCallbackException, err.Error())
		return
	}

	token, err := h.sessions.Issue(result.UserID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to issue session", xslog.Error(err), xslog.UserID(result.UserID))
		redirectWithError(w, r, oauth.ErrorCodeCallbackException, "session_issue_failed")
		return
	}

	http.SetCookie(w, h.sessions.Cookie(token))
	http.Redirect(w, r, profilePath, http.StatusTemporaryRedirect)
}

// HandleLogout handles POST /logout requests.
func (h *Auth) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.ClearCookie())
	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

// redirectWithError sends the browser home with ?error=<code>&reason=<reason>.
func redirectWithError(w http.ResponseWriter, r *http.Request, code oauth.ErrorCode, reason string) {
	q := url.Values{}
	q.Set(oauth.ParamError, string(code))
	if reason != "" {
		if len(reason) > maxReasonLength {
			reason = reason[:maxReasonLength]
		}
		q.Set(oauth.ParamReason, reason)
	}

	http.Redirect(w, r, homePath+"?"+q.Encode(), http.StatusTemporaryRedirect)
}
