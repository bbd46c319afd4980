// Package database opens the configured store, applies its migrations and
// exposes it as a repository.Repository.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"

	"github.com/garrettladley/whoopsync/internal/apperr"
	"github.com/garrettladley/whoopsync/internal/config"
	"github.com/garrettladley/whoopsync/internal/migrations"
	pgmigrations "github.com/garrettladley/whoopsync/internal/migrations/postgres"
	"github.com/garrettladley/whoopsync/internal/repository"
	pgc "github.com/garrettladley/whoopsync/internal/sqlc/postgres"
	sqlitec "github.com/garrettladley/whoopsync/internal/sqlc/sqlite"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const (
	connectTimeout = 10 * time.Second

	sqliteDriverName = "sqlite3"
	sqliteDefaultDSN = "_busy_timeout=5000&_foreign_keys=on"
)

type DB struct {
	*repository.Repository

	Driver config.Driver
	// Migrated lists the migrations applied while opening.
	Migrated []string

	ping  func(context.Context) error
	close func()
}

// Open connects to the store selected by cfg.Driver and migrates it.
// Returns an *apperr.Error of kind KindStorage when the store is unreachable
// or a migration fails, and of kind KindConfiguration for an unknown driver.
func Open(ctx context.Context, cfg config.Database, logger *slog.Logger) (*DB, error) {
	const op = "database.Open"

	logger.InfoContext(ctx, "opening database", xslog.Driver(string(cfg.Driver)))

	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.URL)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.URL)
	case config.DriverMemory:
		return &DB{
			Repository: repository.NewMemory(),
			Driver:     config.DriverMemory,
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil
	default:
		return nil, apperr.Configuration(op, fmt.Sprintf("unknown database driver %q", cfg.Driver))
	}
}

func openPostgres(ctx context.Context, url string) (*DB, error) {
	const op = "database.openPostgres"

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, apperr.Storage(op, fmt.Errorf("connect: %w", err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperr.Storage(op, fmt.Errorf("ping: %w", err))
	}

	applied, err := pgmigrations.Apply(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, apperr.Storage(op, fmt.Errorf("migrate: %w", err))
	}

	return &DB{
		Repository: repository.NewPostgres(pgc.New(pool)),
		Driver:     config.DriverPostgres,
		Migrated:   applied,
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, dsn string) (*DB, error) {
	const op = "database.openSQLite"

	if !strings.Contains(dsn, "?") {
		dsn += "?" + sqliteDefaultDSN
	}

	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, apperr.Storage(op, fmt.Errorf("open: %w", err))
	}
	// one writer; also keeps a :memory: database on a single connection
	db.SetMaxOpenConns(1)

	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, apperr.Storage(op, fmt.Errorf("migrate: %w", err))
	}

	return &DB{
		Repository: repository.NewSQLite(sqlitec.New(db)),
		Driver:     config.DriverSQLite,
		Migrated:   applied,
		ping:       db.PingContext,
		close:      func() { _ = db.Close() },
	}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.ping(ctx)
}

func (d *DB) Close() {
	d.close()
}
