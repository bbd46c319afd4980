package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/garrettladley/whoopsync/internal/client/whoop"
	"github.com/garrettladley/whoopsync/internal/config"
	"github.com/garrettladley/whoopsync/internal/database"
	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/paths"
	"github.com/garrettladley/whoopsync/internal/xslog"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

func newLogger() *slog.Logger {
	return xslog.NewLoggerFromEnv(os.Stderr)
}

// openDatabase opens the store named by DATABASE_DRIVER and DATABASE_URL.
// sqlite defaults to the per-user data directory.
func openDatabase(ctx context.Context, logger *slog.Logger) (*database.DB, error) {
	if _, err := paths.EnsureDir(); err != nil {
		return nil, err
	}
	defaultPath, err := paths.DB()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ReadDatabase(defaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read database config: %w", err)
	}

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newSyncService builds the sync pipeline the server runs, without
// publishers.
func newSyncService(cmd *cobra.Command, logger *slog.Logger) (*xsync.Service, func(), error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}

	db, err := database.Open(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	oauthConfig := oauth.NewConfig(cfg.Whoop)
	svc := xsync.NewService(xsync.Config{
		Tokens:      oauth.NewRefresher(oauthConfig, db.Credentials),
		Fetcher:     xsync.NewFetcher(logger, whoop.WithBaseURL(cfg.Whoop.APIBaseURL)),
		Writer:      xsync.NewWriter(db.Records, nil, logger),
		Credentials: db.Credentials,
		Concurrency: cfg.Sync.Concurrency,
		Logger:      logger,
	})
	return svc, db.Close, nil
}
