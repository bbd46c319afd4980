package webhook

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrMissingUserID    = errors.New("missing user_id in webhook payload")
)

type ProcessRequest struct {
	Body []byte
}

type ProcessResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	UserID      string    `json:"user_id"`
	EventType   string    `json:"event_type,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

type Service interface {
	// ProcessWebhook parses the payload and syncs the user it names.
	// A sync that stores nothing is reported in the result, not as an error.
	// Returns ErrMalformedPayload if the body cannot be parsed.
	// Returns ErrMissingUserID if the payload names no user.
	ProcessWebhook(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}
