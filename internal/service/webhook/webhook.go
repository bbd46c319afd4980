package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/whoopsync/internal/xslog"
	"github.com/garrettladley/whoopsync/internal/xsync"
)

const (
	messageSynced   = "Webhook processed and data synced."
	messageNoChange = "Webhook processed; no new data was stored."
)

type Processor struct {
	syncer xsync.Syncer
	logger *slog.Logger
	now    func() time.Time
}

var _ Service = (*Processor)(nil)

func NewProcessor(syncer xsync.Syncer, logger *slog.Logger) *Processor {
	if syncer == nil {
		panic("webhook: nil syncer")
	}
	return &Processor{
		syncer: syncer,
		logger: logger,
		now:    time.Now,
	}
}

func (p *Processor) ProcessWebhook(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	payload, err := ParsePayload(req.Body)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With(
		xslog.UserID(payload.UserID),
		xslog.EventType(payload.EventType),
	)
	logger.InfoContext(ctx, "received webhook")

	synced := p.syncer.SyncUser(ctx, payload.UserID)

	result := &ProcessResult{
		Success:     synced,
		Message:     messageSynced,
		UserID:      payload.UserID,
		EventType:   payload.EventType,
		ProcessedAt: p.now().UTC(),
	}
	if !synced {
		result.Message = messageNoChange
		logger.WarnContext(ctx, "webhook sync stored nothing")
	}

	return result, nil
}
