package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sqlitec "github.com/garrettladley/whoopsync/internal/sqlc/sqlite"
)

func NewSQLite(q sqlitec.Querier) *Repository {
	return &Repository{
		Credentials: &sqliteCredentialRepo{q: q},
		Records:     &sqliteRecordRepo{q: q},
	}
}

type sqliteCredentialRepo struct {
	q sqlitec.Querier
}

func (r *sqliteCredentialRepo) Upsert(ctx context.Context, cred *Credential) error {
	return r.q.UpsertCredential(ctx, sqlitec.UpsertCredentialParams{
		WhoopUserID:  cred.UserID,
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt.UTC(),
	})
}

func (r *sqliteCredentialRepo) Get(ctx context.Context, userID string) (*Credential, error) {
	row, err := r.q.GetCredential(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cred := sqliteCredential(row)
	return &cred, nil
}

func (r *sqliteCredentialRepo) List(ctx context.Context) ([]Credential, error) {
	rows, err := r.q.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}
	creds := make([]Credential, len(rows))
	for i, row := range rows {
		creds[i] = sqliteCredential(row)
	}
	return creds, nil
}

func sqliteCredential(row sqlitec.WhoopToken) Credential {
	return Credential{
		UserID:       row.WhoopUserID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt.UTC(),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type sqliteRecordRepo struct {
	q sqlitec.Querier
}

func (r *sqliteRecordRepo) Exists(ctx context.Context, userID string, timestamp time.Time) (bool, error) {
	count, err := r.q.RecordExists(ctx, sqlitec.RecordExistsParams{
		WhoopUserID: userID,
		Timestamp:   timestamp.UTC(),
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sqliteRecordRepo) Insert(ctx context.Context, record *Record) (bool, error) {
	n, err := r.q.InsertRecord(ctx, sqlitec.InsertRecordParams{
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

func (r *sqliteRecordRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Record, error) {
	rows, err := r.q.ListRecentRecords(ctx, sqlitec.ListRecentRecordsParams{
		WhoopUserID: userID,
		Limit:       int64(clampLimit(limit)),
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
