package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// NewMemory returns a process-local store. Both repositories share one lock.
func NewMemory() *Repository {
	m := &memoryStore{
		creds:   make(map[string]Credential),
		records: make(map[string][]Record),
		now:     time.Now,
	}
	return &Repository{
		Credentials: &memoryCredentialRepo{m: m},
		Records:     &memoryRecordRepo{m: m},
	}
}

type memoryStore struct {
	mu      sync.RWMutex
	creds   map[string]Credential
	records map[string][]Record
	nextID  int64
	now     func() time.Time
}

type memoryCredentialRepo struct {
	m *memoryStore
}

func (r *memoryCredentialRepo) Upsert(_ context.Context, cred *Credential) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := r.m.now().UTC()
	stored, ok := r.m.creds[cred.UserID]
	if !ok {
		stored = Credential{UserID: cred.UserID, CreatedAt: now}
	}
	stored.AccessToken = cred.AccessToken
	stored.RefreshToken = cred.RefreshToken
	stored.ExpiresAt = cred.ExpiresAt.UTC()
	stored.UpdatedAt = now
	r.m.creds[cred.UserID] = stored
	return nil
}

func (r *memoryCredentialRepo) Get(_ context.Context, userID string) (*Credential, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	cred, ok := r.m.creds[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &cred, nil
}

func (r *memoryCredentialRepo) List(_ context.Context) ([]Credential, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	creds := make([]Credential, 0, len(r.m.creds))
	for _, cred := range r.m.creds {
		creds = append(creds, cred)
	}
	slices.SortFunc(creds, func(a, b Credential) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return creds, nil
}

type memoryRecordRepo struct {
	m *memoryStore
}

func (r *memoryRecordRepo) Exists(_ context.Context, userID string, timestamp time.Time) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.indexOf(userID, timestamp) >= 0, nil
}

func (r *memoryRecordRepo) Insert(_ context.Context, record *Record) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.indexOf(record.UserID, record.Timestamp) >= 0 {
		return false, nil
	}

	r.m.nextID++
	stored := *record
	stored.ID = r.m.nextID
	stored.Timestamp = record.Timestamp.UTC()
	stored.CreatedAt = r.m.now().UTC()
	r.m.records[record.UserID] = append(r.m.records[record.UserID], stored)
	return true, nil
}

func (r *memoryRecordRepo) ListRecent(_ context.Context, userID string, limit int) ([]Record, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	records := slices.Clone(r.m.records[userID])
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if n := clampLimit(limit); len(records) > n {
		records = records[:n]
	}
	return records, nil
}

func (m *memoryStore) indexOf(userID string, timestamp time.Time) int {
	return slices.IndexFunc(m.records[userID], func(rec Record) bool {
		return rec.Timestamp.Equal(timestamp)
	})
}
