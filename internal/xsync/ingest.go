package xsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/storage"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

// Writer stores records write-once and announces new ones.
type Writer struct {
	records   repository.RecordRepository
	publisher storage.RecordPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewWriter(records repository.RecordRepository, publisher storage.RecordPublisher, logger *slog.Logger) *Writer {
	if records == nil {
		panic("xsync: nil record repository")
	}
	if publisher == nil {
		publisher = storage.NoopPublisher{}
	}
	return &Writer{
		records:   records,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Store reports whether the record is persisted after the call, either
// because it was inserted or because it already existed.
func (w *Writer) Store(ctx context.Context, record *repository.Record) bool {
	if record == nil {
		return false
	}

	logger := w.logger.With(xslog.UserID(record.UserID), xslog.Timestamp(record.Timestamp))

	exists, err := w.records.Exists(ctx, record.UserID, record.Timestamp)
	if err != nil {
		logger.WarnContext(ctx, "failed to check for existing record, inserting anyway", xslog.Error(err))
	} else if exists {
		logger.InfoContext(ctx, "record already stored, skipping insert")
		return true
	}

	inserted, err := w.records.Insert(ctx, record)
	if err != nil {
		logger.ErrorContext(ctx, "failed to store record", xslog.Error(err))
		return false
	}
	if !inserted {
		logger.InfoContext(ctx, "record stored concurrently, skipping publish")
		return true
	}

	if err := w.publisher.Publish(ctx, storage.NewRecordEvent(record, w.now())); err != nil {
		publishFailures.Inc()
		logger.WarnContext(ctx, "failed to publish record event", xslog.Error(err))
	}

	logger.InfoContext(ctx, "stored record")
	return true
}
