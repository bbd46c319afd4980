// Package server assembles the HTTP surface: OAuth login, the WHOOP
// webhook, the cron trigger, the profile view, health and metrics.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garrettladley/whoopsync/internal/identity"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/server/handler"
	servermw "github.com/garrettladley/whoopsync/internal/server/middleware"
	"github.com/garrettladley/whoopsync/internal/service/auth"
	"github.com/garrettladley/whoopsync/internal/service/webhook"
	"github.com/garrettladley/whoopsync/internal/session"
	"github.com/garrettladley/whoopsync/internal/storage"
	"github.com/garrettladley/whoopsync/internal/xhttp/middleware"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

type Deps struct {
	Logger      *slog.Logger
	Auth        auth.Service
	Webhook     webhook.Service
	Syncer      xsync.Syncer
	Records     repository.RecordRepository
	Sessions    *session.Manager
	Identity    identity.Provider
	RateLimiter storage.RateLimiter
	CronSecret  string
	// HealthChecks are pinged by GET /health, keyed by component name.
	HealthChecks map[string]handler.PingFunc
}

// NewRouter wires every route behind the shared middleware stack.
func NewRouter(deps Deps) http.Handler {
	provider := deps.Identity
	if provider == nil {
		provider = identity.Context{}
	}

	authHandler := handler.NewAuth(deps.Auth, deps.Sessions)
	webhookHandler := handler.NewWebhook(deps.Webhook)
	cronHandler := handler.NewCron(deps.Syncer)
	profileHandler := handler.NewProfile(provider, deps.Syncer, deps.Records)
	healthHandler := handler.NewHealth(deps.HealthChecks)

	mux := http.NewServeMux()

	// browser and webhook routes share the per-IP limiter
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /auth/start", authHandler.HandleAuthStart)
	publicMux.HandleFunc("GET /auth/callback", authHandler.HandleAuthCallback)
	publicMux.HandleFunc("POST /logout", authHandler.HandleLogout)
	publicMux.HandleFunc("GET /profile", profileHandler.HandleProfile)
	publicMux.HandleFunc("POST /webhooks/whoop", webhookHandler.HandleWebhook)
	publicWrapped := middleware.Chain(publicMux,
		servermw.RateLimit(deps.RateLimiter),
	)
	mux.Handle("/auth/", publicWrapped)
	mux.Handle("/logout", publicWrapped)
	mux.Handle("/profile", publicWrapped)
	mux.Handle("/webhooks/", publicWrapped)

	cronMux := http.NewServeMux()
	cronMux.HandleFunc("GET /cron/sync", cronHandler.HandleSync)
	cronMux.HandleFunc("POST /cron/sync", cronHandler.HandleSync)
	mux.Handle("/cron/", middleware.Chain(cronMux,
		servermw.CronAuth(deps.CronSecret),
	))

	mux.HandleFunc("GET /health", healthHandler.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Recovery,
		middleware.Logging,
		middleware.Gzip,
		middleware.SecurityHeaders,
		servermw.Session(deps.Sessions),
	)
}
