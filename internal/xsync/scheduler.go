package xsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/whoopsync/internal/xslog"
)

// Scheduler runs SyncAllUsers on a fixed interval until its context ends.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled. A non-positive interval returns
// immediately.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.InfoContext(ctx, "scheduled sync disabled")
		return
	}

	s.logger.InfoContext(ctx, "scheduled sync started", xslog.Duration(s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduled sync stopped")
			return
		case <-ticker.C:
			s.syncer.SyncAllUsers(ctx)
		}
	}
}
