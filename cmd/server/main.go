package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/garrettladley/whoopsync/internal/client/whoop"
	"github.com/garrettladley/whoopsync/internal/config"
	"github.com/garrettladley/whoopsync/internal/database"
	"github.com/garrettladley/whoopsync/internal/identity"
	"github.com/garrettladley/whoopsync/internal/oauth"
	xredis "github.com/garrettladley/whoopsync/internal/redis"
	"github.com/garrettladley/whoopsync/internal/server"
	"github.com/garrettladley/whoopsync/internal/server/handler"
	"github.com/garrettladley/whoopsync/internal/service/auth"
	"github.com/garrettladley/whoopsync/internal/service/webhook"
	"github.com/garrettladley/whoopsync/internal/session"
	"github.com/garrettladley/whoopsync/internal/storage"
	"github.com/garrettladley/whoopsync/internal/xhttp"
	"github.com/garrettladley/whoopsync/internal/xslog"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

const (
	keyPort     = "port"
	keyInterval = "interval"

	upstreamTimeout = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if len(db.Migrated) > 0 {
		logger.InfoContext(ctx, "applied migrations", xslog.Count(len(db.Migrated)))
	}

	redisClient, err := initRedis(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize redis client: %w", err)
	}

	backend := initBackend(ctx, cfg, redisClient, logger)
	defer func() {
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close backend", xslog.Error(err))
		}
	}()

	publisher := initPublisher(ctx, cfg, redisClient, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close publisher", xslog.Error(err))
		}
	}()

	// Sync pipeline
	oauthConfig := oauth.NewConfig(cfg.Whoop)
	upstreamClient := xhttp.NewHTTPClient(xhttp.WithTimeout(upstreamTimeout))
	apiOpts := []whoop.Option{
		whoop.WithBaseURL(cfg.Whoop.APIBaseURL),
		whoop.WithTimeout(upstreamTimeout),
	}

	syncService := xsync.NewService(xsync.Config{
		Tokens:      oauth.NewRefresher(oauthConfig, db.Credentials, oauth.WithHTTPClient(upstreamClient)),
		Fetcher:     xsync.NewFetcher(logger, apiOpts...),
		Writer:      xsync.NewWriter(db.Records, publisher, logger),
		Credentials: db.Credentials,
		Concurrency: cfg.Sync.Concurrency,
		Logger:      logger,
	})

	// Services
	authService := auth.NewOAuth(auth.Deps{
		Config:      oauthConfig,
		StateStore:  backend,
		Credentials: db.Credentials,
		Syncer:      syncService,
		APIOptions:  apiOpts,
		HTTPClient:  upstreamClient,
		Logger:      logger,
	})
	webhookService := webhook.NewProcessor(syncService, logger)

	sessions, err := session.NewManager(cfg.AppSecret, session.WithSecure(cfg.Env.IsProduction()))
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	var provider identity.Provider = identity.Context{}
	if cfg.TrustUserHeader {
		if !cfg.Env.IsDevelopment() {
			logger.WarnContext(ctx, "trusting user id header outside development")
		}
		provider = identity.Chain{identity.Context{}, identity.Header{}}
	}

	router := server.NewRouter(server.Deps{
		Logger:      logger,
		Auth:        authService,
		Webhook:     webhookService,
		Syncer:      syncService,
		Records:     db.Records,
		Sessions:    sessions,
		Identity:    provider,
		RateLimiter: backend,
		CronSecret:  cfg.CronSecret,
		HealthChecks: map[string]handler.PingFunc{
			"database": db.Ping,
			"backend":  backend.Ping,
		},
	})

	if cfg.Sync.Interval > 0 {
		logger.InfoContext(ctx, "starting sync scheduler", slog.Duration(keyInterval, cfg.Sync.Interval))
		go xsync.NewScheduler(syncService, cfg.Sync.Interval, logger).Run(ctx)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			xslog.Driver(string(db.Driver)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

// initRedis returns nil when no REDIS_URL is configured.
func initRedis(ctx context.Context, cfg config.Config, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	logger.InfoContext(ctx, "connecting to Redis")
	return xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
}

func initBackend(ctx context.Context, cfg config.Config, redisClient *redis.Client, logger *slog.Logger) storage.Backend {
	if redisClient == nil {
		logger.InfoContext(ctx, "initializing in-memory backend")
		return storage.NewMemoryBackend(cfg.RateLimit.Limit, cfg.RateLimit.Burst)
	}
	logger.InfoContext(ctx, "initializing Redis backend")
	return storage.NewRedisBackend(storage.RedisConfig{Client: redisClient}, int(cfg.RateLimit.Limit))
}

func initPublisher(ctx context.Context, cfg config.Config, redisClient *redis.Client, logger *slog.Logger) storage.RecordPublisher {
	var publishers storage.MultiPublisher
	if redisClient != nil {
		logger.InfoContext(ctx, "publishing ingested records to Redis")
		publishers = append(publishers, storage.NewRedisRecordPublisher(redisClient))
	}
	if cfg.KafkaEnabled() {
		logger.InfoContext(ctx, "publishing ingested records to Kafka", xslog.Topic(cfg.Kafka.Topic))
		publishers = append(publishers, storage.NewKafkaRecordPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	}

	switch len(publishers) {
	case 0:
		return storage.NoopPublisher{}
	case 1:
		return publishers[0]
	default:
		return publishers
	}
}
