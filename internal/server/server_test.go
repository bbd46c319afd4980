package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/whoopsync/internal/client/whoop"
	"github.com/garrettladley/whoopsync/internal/config"
	"github.com/garrettladley/whoopsync/internal/identity"
	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/server/handler"
	"github.com/garrettladley/whoopsync/internal/service/auth"
	"github.com/garrettladley/whoopsync/internal/service/webhook"
	"github.com/garrettladley/whoopsync/internal/session"
	"github.com/garrettladley/whoopsync/internal/storage"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

const (
	cronSecret = "cron-secret"
	cycleJSON  = `{"records": [{
		"id": 93845, "user_id": 123, "score_state": "SCORED",
		"start": "2025-03-09T22:00:00Z", "end": "2025-03-10T07:00:00Z",
		"strain": {"score": 12.5},
		"recovery": {"score": 81, "resting_heart_rate": 52},
		"sleep": {"total_sleep_duration_milli": 28800000}
	}]}`
)

type harness struct {
	srv         *httptest.Server
	client      *http.Client
	repo        *repository.Repository
	tokenCalls  *atomic.Int32
	backendDown *atomic.Bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	var tokenCalls atomic.Int32
	whoopMux := http.NewServeMux()
	whoopMux.HandleFunc("POST /oauth/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "authorization_code" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token": "access-1", "refresh_token": "refresh-1",
			"expires_in": 3600, "token_type": "bearer", "user": {"id": 123}}`)
	})
	whoopMux.HandleFunc("GET /developer/v1/cycle", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, cycleJSON)
	})
	whoopSrv := httptest.NewServer(whoopMux)
	t.Cleanup(whoopSrv.Close)

	oauthCfg := oauth.NewConfig(config.Whoop{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/auth/callback",
		AuthURL:      whoopSrv.URL + "/oauth/oauth2/auth",
		TokenURL:     whoopSrv.URL + "/oauth/oauth2/token",
	})
	apiOpts := []whoop.Option{whoop.WithBaseURL(whoopSrv.URL + "/developer/v1")}

	repo := repository.NewMemory()
	backend := storage.NewMemoryBackend(100, 100)
	t.Cleanup(func() { _ = backend.Close() })

	syncer := xsync.NewService(xsync.Config{
		Tokens:      oauth.NewRefresher(oauthCfg, repo.Credentials),
		Fetcher:     xsync.NewFetcher(logger, apiOpts...),
		Writer:      xsync.NewWriter(repo.Records, nil, logger),
		Credentials: repo.Credentials,
		Concurrency: 2,
		Logger:      logger,
	})

	sessions, err := session.NewManager("app-secret")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	var backendDown atomic.Bool
	router := NewRouter(Deps{
		Logger: logger,
		Auth: auth.NewOAuth(auth.Deps{
			Config:      oauthCfg,
			StateStore:  backend,
			Credentials: repo.Credentials,
			Syncer:      syncer,
			APIOptions:  apiOpts,
			Logger:      logger,
		}),
		Webhook:     webhook.NewProcessor(syncer, logger),
		Syncer:      syncer,
		Records:     repo.Records,
		Sessions:    sessions,
		Identity:    identity.Context{},
		RateLimiter: backend,
		CronSecret:  cronSecret,
		HealthChecks: map[string]handler.PingFunc{
			"backend": func(ctx context.Context) error {
				if backendDown.Load() {
					return errors.New("backend unreachable")
				}
				return backend.Ping(ctx)
			},
		},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &harness{
		srv:         srv,
		client:      client,
		repo:        repo,
		tokenCalls:  &tokenCalls,
		backendDown: &backendDown,
	}
}

func (h *harness) do(t *testing.T, method, path string, body io.Reader, mutate func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, h.srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if mutate != nil {
		mutate(req)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// login walks /auth/start and /auth/callback and returns the session cookie.
func (h *harness) login(t *testing.T) *http.Cookie {
	t.Helper()

	start := h.do(t, http.MethodGet, "/auth/start", nil, nil)
	if start.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("/auth/start status = %d, want 307", start.StatusCode)
	}
	authURL, err := url.Parse(start.Header.Get("Location"))
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	state := authURL.Query().Get("state")
	if state == "" {
		t.Fatal("auth url has no state")
	}

	callback := h.do(t, http.MethodGet, "/auth/callback?code=the-code&state="+url.QueryEscape(state), nil, nil)
	if callback.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("/auth/callback status = %d, want 307", callback.StatusCode)
	}
	if got := callback.Header.Get("Location"); got != "/profile" {
		t.Fatalf("/auth/callback Location = %q, want /profile", got)
	}

	for _, c := range callback.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := go_json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestLoginStoresCredentialAndSyncs(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	before := time.Now()
	cookie := h.login(t)
	after := time.Now()

	cred, err := h.repo.Credentials.Get(t.Context(), "123")
	if err != nil {
		t.Fatalf("credential not stored: %v", err)
	}
	if cred.AccessToken != "access-1" || cred.RefreshToken != "refresh-1" {
		t.Errorf("tokens = %q/%q", cred.AccessToken, cred.RefreshToken)
	}
	if cred.ExpiresAt.Before(before.Add(time.Hour-time.Second)) || cred.ExpiresAt.After(after.Add(time.Hour+time.Second)) {
		t.Errorf("ExpiresAt = %v, want about now+1h", cred.ExpiresAt)
	}

	records, err := h.repo.Records.ListRecent(t.Context(), "123", 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records after login = %d, want 1", len(records))
	}

	resp := h.do(t, http.MethodGet, "/profile", nil, func(r *http.Request) { r.AddCookie(cookie) })
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/profile status = %d, want 200", resp.StatusCode)
	}
	profile := decodeBody[struct {
		UserID  string              `json:"user_id"`
		Records []repository.Record `json:"records"`
	}](t, resp)
	if profile.UserID != "123" || len(profile.Records) != 1 {
		t.Fatalf("profile = %+v, want one record for 123", profile)
	}
	got := profile.Records[0]
	if got.SleepDurationHours == nil || *got.SleepDurationHours != 8.0 {
		t.Errorf("sleep_duration = %v, want 8", got.SleepDurationHours)
	}
	if !got.Timestamp.Equal(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v, want cycle end", got.Timestamp)
	}

	if n := h.tokenCalls.Load(); n != 1 {
		t.Errorf("token endpoint calls = %d, want 1", n)
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/profile", nil, nil)
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/?error=not_logged_in" {
		t.Errorf("Location = %q, want /?error=not_logged_in", got)
	}
}

func TestCallbackWithForgedState(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/auth/callback?code=the-code&state=forged", nil, nil)
	if got := resp.Header.Get("Location"); got != "/?error=auth_failed&reason=invalid_state" {
		t.Errorf("Location = %q", got)
	}
	if n := h.tokenCalls.Load(); n != 0 {
		t.Errorf("token endpoint calls = %d, want 0", n)
	}
}

func TestCronSync(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(t)

	unauthorized := h.do(t, http.MethodGet, "/cron/sync", nil, nil)
	if unauthorized.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without secret = %d, want 401", unauthorized.StatusCode)
	}
	if body := decodeBody[map[string]any](t, unauthorized); body["message"] != "Unauthorized" {
		t.Errorf("message = %v, want Unauthorized", body["message"])
	}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp := h.do(t, method, "/cron/sync", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+cronSecret)
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", method, resp.StatusCode)
		}
		body := decodeBody[map[string]any](t, resp)
		if body["message"] != "WHOOP data fetch process completed." || body["attempted"] != float64(1) || body["succeeded"] != float64(1) {
			t.Errorf("%s body = %v", method, body)
		}
	}

	records, err := h.repo.Records.ListRecent(t.Context(), "123", 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records after repeated syncs = %d, want 1", len(records))
	}
}

func TestWebhook(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(t)

	missing := h.do(t, http.MethodPost, "/webhooks/whoop", strings.NewReader(`{"type": "recovery.updated"}`), nil)
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing user status = %d, want 400", missing.StatusCode)
	}
	if body := decodeBody[map[string]any](t, missing); body["message"] != "Missing user_id in webhook payload" {
		t.Errorf("message = %v", body["message"])
	}

	resp := h.do(t, http.MethodPost, "/webhooks/whoop", strings.NewReader(`{"user_id": 123, "type": "recovery.updated"}`), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["success"] != true || body["user_id"] != "123" || body["event_type"] != "recovery.updated" {
		t.Errorf("body = %v", body)
	}

	unknown := h.do(t, http.MethodPost, "/webhooks/whoop", strings.NewReader(`{"user_id": 999}`), nil)
	if unknown.StatusCode != http.StatusOK {
		t.Fatalf("unknown user status = %d, want 200", unknown.StatusCode)
	}
	if body := decodeBody[map[string]any](t, unknown); body["success"] != false {
		t.Errorf("unknown user success = %v, want false", body["success"])
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.login(t)

	if resp := h.do(t, http.MethodGet, "/health", nil, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", resp.StatusCode)
	}

	h.backendDown.Store(true)
	if resp := h.do(t, http.MethodGet, "/health", nil, nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/health with backend down = %d, want 503", resp.StatusCode)
	}

	resp := h.do(t, http.MethodGet, "/metrics", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "whoopsync_sync_user_results_total") {
		t.Error("metrics do not include the sync result counter")
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/health", nil, nil)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}
