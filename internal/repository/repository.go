// Package repository persists OAuth credentials and normalized daily
// records. Each store (postgres, sqlite, memory) satisfies the same pair of
// interfaces so the sync pipeline never sees the driver.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("repository: not found")

const (
	DefaultRecentLimit = 30
	MaxRecentLimit     = 100
)

type Repository struct {
	Credentials CredentialRepository
	Records     RecordRepository
}

type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Record is one normalized day of WHOOP data. Nil metrics were absent
// upstream.
type Record struct {
	ID                 int64     `json:"id,omitempty"`
	UserID             string    `json:"whoop_user_id"`
	SleepDurationHours *float64  `json:"sleep_duration"`
	RecoveryScore      *float64  `json:"recovery_score"`
	StrainScore        *float64  `json:"strain_score"`
	HeartRate          *float64  `json:"heart_rate"`
	Timestamp          time.Time `json:"timestamp"`
	CreatedAt          time.Time `json:"created_at"`
}

type CredentialRepository interface {
	// Upsert inserts the credential or replaces the tokens and expiry of the
	// existing row for the same user.
	Upsert(ctx context.Context, cred *Credential) error
	// Get returns ErrNotFound when the user has no stored credential.
	Get(ctx context.Context, userID string) (*Credential, error)
	List(ctx context.Context) ([]Credential, error)
}

type RecordRepository interface {
	Exists(ctx context.Context, userID string, timestamp time.Time) (bool, error)
	// Insert reports whether a row was written. A record whose
	// (user, timestamp) already exists is left untouched.
	Insert(ctx context.Context, record *Record) (bool, error)
	// ListRecent returns up to limit records for the user, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]Record, error)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}
