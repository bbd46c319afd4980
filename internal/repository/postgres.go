package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	pgc "github.com/garrettladley/whoopsync/internal/sqlc/postgres"
)

func NewPostgres(q pgc.Querier) *Repository {
	return &Repository{
		Credentials: &pgCredentialRepo{q: q},
		Records:     &pgRecordRepo{q: q},
	}
}

type pgCredentialRepo struct {
	q pgc.Querier
}

func (r *pgCredentialRepo) Upsert(ctx context.Context, cred *Credential) error {
	return r.q.UpsertCredential(ctx, pgc.UpsertCredentialParams{
		WhoopUserID:  cred.UserID,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt.UTC(),
	})
}

func (r *pgCredentialRepo) Get(ctx context.Context, userID string) (*Credential, error) {
	row, err := r.q.GetCredential(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cred := pgCredential(row)
	return &cred, nil
}

func (r *pgCredentialRepo) List(ctx context.Context) ([]Credential, error) {
	rows, err := r.q.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}
	creds := make([]Credential, len(rows))
	for i, row := range rows {
		creds[i] = pgCredential(row)
	}
	return creds, nil
}

func pgCredential(row pgc.WhoopToken) Credential {
	return Credential{
		UserID:       row.WhoopUserID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt.UTC(),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type pgRecordRepo struct {
	q pgc.Querier
}

func (r *pgRecordRepo) Exists(ctx context.Context, userID string, timestamp time.Time) (bool, error) {
	return r.q.RecordExists(ctx, pgc.RecordExistsParams{
		WhoopUserID: userID,
		Timestamp:   timestamp.UTC(),
	})
}

func (r *pgRecordRepo) Insert(ctx context.Context, record *Record) (bool, error) {
	n, err := r.q.InsertRecord(ctx, pgc.InsertRecordParams{
		WhoopUserID:   record.UserID,
		SleepDuration: record.SleepDurationHours,
		RecoveryScore: record.RecoveryScore,
		StrainScore:   record.StrainScore,
		HeartRate:     record.HeartRate,
		Timestamp:     record.Timestamp.UTC(),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *pgRecordRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := r.q.ListRecentRecords(ctx, pgc.ListRecentRecordsParams{
		WhoopUserID: userID,
		RowLimit:    int32(clampLimit(limit)),
	})
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			ID:                 row.ID,
			UserID:             row.WhoopUserID,
			SleepDurationHours: row.SleepDuration,
			RecoveryScore:      row.RecoveryScore,
			StrainScore:        row.StrainScore,
			HeartRate:          row.HeartRate,
			Timestamp:          row.Timestamp.UTC(),
			CreatedAt:          row.CreatedAt.UTC(),
		}
	}
	return records, nil
}
