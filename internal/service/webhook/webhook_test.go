package webhook

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/garrettladley/whoopsync/internal/xsync"
)

type recordingSyncer struct {
	mu     sync.Mutex
	calls  []string
	result bool
}

func (s *recordingSyncer) SyncUser(_ context.Context, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)
	return s.result
}

func (s *recordingSyncer) SyncAllUsers(context.Context) xsync.Summary {
	return xsync.Summary{}
}

func TestProcessWebhook(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		body        string
		syncResult  bool
		wantErr     error
		wantCalls   int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "synced",
			body:        `{"user_id": 10129, "type": "recovery.updated"}`,
			syncResult:  true,
			wantCalls:   1,
			wantSuccess: true,
			wantMessage: messageSynced,
		},
		{
			name:        "sync stored nothing",
			body:        `{"user_id": 10129}`,
			syncResult:  false,
			wantCalls:   1,
			wantSuccess: false,
			wantMessage: messageNoChange,
		},
		{
			name:    "missing user",
			body:    `{"type": "recovery.updated"}`,
			wantErr: ErrMissingUserID,
		},
		{
			name:    "malformed",
			body:    `not json`,
			wantErr: ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			syncer := &recordingSyncer{result: tt.syncResult}
			p := NewProcessor(syncer, slog.New(slog.DiscardHandler))
			p.now = func() time.Time { return fixed }

			got, err := p.ProcessWebhook(context.Background(), ProcessRequest{Body: []byte(tt.body)})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ProcessWebhook() error = %v, want %v", err, tt.wantErr)
			}
			if len(syncer.calls) != tt.wantCalls {
				t.Fatalf("SyncUser calls = %d, want %d", len(syncer.calls), tt.wantCalls)
			}
			if tt.wantErr != nil {
				return
			}

			if got.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", got.Success, tt.wantSuccess)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.UserID != "10129" || syncer.calls[0] != "10129" {
				t.Errorf("UserID = %q, synced %q, want 10129", got.UserID, syncer.calls[0])
			}
			if !got.ProcessedAt.Equal(fixed) {
				t.Errorf("ProcessedAt = %v, want %v", got.ProcessedAt, fixed)
			}
		})
	}
}

func TestNewProcessorNilSyncer(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewProcessor(nil) did not panic")
		}
	}()
	NewProcessor(nil, slog.New(slog.DiscardHandler))
}
