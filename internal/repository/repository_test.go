package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	_ "github.com/mattn/go-sqlite3"

	"github.com/garrettladley/whoopsync/internal/migrations"
	"github.com/garrettladley/whoopsync/internal/repository"
	sqlitec "github.com/garrettladley/whoopsync/internal/sqlc/sqlite"
)

func ptr[T any](v T) *T { return &v }

func newSQLite(t *testing.T) *repository.Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return repository.NewSQLite(sqlitec.New(db))
}

func stores(t *testing.T) map[string]*repository.Repository {
	t.Helper()
	return map[string]*repository.Repository{
		"memory": repository.NewMemory(),
		"sqlite": newSQLite(t),
	}
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			_, err := repo.Credentials.Get(ctx, "42")
			if !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
			}

			expires := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
			if err := repo.Credentials.Upsert(ctx, &repository.Credential{
				UserID:       "42",
				AccessToken:  "a1",
				RefreshToken: "r1",
				ExpiresAt:    expires,
			}); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}

			if err := repo.Credentials.Upsert(ctx, &repository.Credential{
				UserID:       "42",
				AccessToken:  "a2",
				RefreshToken: "r2",
				ExpiresAt:    expires.Add(time.Hour),
			}); err != nil {
				t.Fatalf("second Upsert() error = %v", err)
			}

			got, err := repo.Credentials.Get(ctx, "42")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			want := &repository.Credential{
				UserID:       "42",
				AccessToken:  "a2",
				RefreshToken: "r2",
				ExpiresAt:    expires.Add(time.Hour),
			}
			opts := cmpopts.IgnoreFields(repository.Credential{}, "CreatedAt", "UpdatedAt")
			if diff := cmp.Diff(want, got, opts); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}

			list, err := repo.Credentials.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 1 {
				t.Errorf("List() len = %d, want 1", len(list))
			}
		})
	}
}

func TestRecords(t *testing.T) {
	t.Parallel()

	for name, repo := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			day := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
			rec := &repository.Record{
				UserID:             "42",
				SleepDurationHours: ptr(7.5),
				RecoveryScore:      ptr(66.0),
				StrainScore:        ptr(12.3),
				HeartRate:          nil,
				Timestamp:          day,
			}

			exists, err := repo.Records.Exists(ctx, "42", day)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if exists {
				t.Fatal("Exists() = true before insert")
			}

			inserted, err := repo.Records.Insert(ctx, rec)
			if err != nil || !inserted {
				t.Fatalf("Insert() = %v, %v; want true, nil", inserted, err)
			}

			inserted, err = repo.Records.Insert(ctx, rec)
			if err != nil {
				t.Fatalf("duplicate Insert() error = %v", err)
			}
			if inserted {
				t.Error("duplicate Insert() = true, want false")
			}

			exists, err = repo.Records.Exists(ctx, "42", day)
			if err != nil || !exists {
				t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
			}

			if _, err := repo.Records.Insert(ctx, &repository.Record{UserID: "42", Timestamp: day.AddDate(0, 0, 1)}); err != nil {
				t.Fatalf("Insert() next day error = %v", err)
			}
			if _, err := repo.Records.Insert(ctx, &repository.Record{UserID: "7", Timestamp: day}); err != nil {
				t.Fatalf("Insert() other user error = %v", err)
			}

			got, err := repo.Records.ListRecent(ctx, "42", 0)
			if err != nil {
				t.Fatalf("ListRecent() error = %v", err)
			}
			want := []repository.Record{
				{UserID: "42", Timestamp: day.AddDate(0, 0, 1)},
				{UserID: "42", SleepDurationHours: ptr(7.5), RecoveryScore: ptr(66.0), StrainScore: ptr(12.3), Timestamp: day},
			}
			opts := cmpopts.IgnoreFields(repository.Record{}, "ID", "CreatedAt")
			if diff := cmp.Diff(want, got, opts); diff != "" {
				t.Errorf("ListRecent() mismatch (-want +got):\n%s", diff)
			}

			limited, err := repo.Records.ListRecent(ctx, "42", 1)
			if err != nil {
				t.Fatalf("ListRecent(1) error = %v", err)
			}
			if len(limited) != 1 || !limited[0].Timestamp.Equal(day.AddDate(0, 0, 1)) {
				t.Errorf("ListRecent(1) = %+v, want newest record only", limited)
			}
		})
	}
}
