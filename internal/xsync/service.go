package xsync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/whoopsync/internal/oauth"
	"github.com/garrettladley/whoopsync/internal/repository"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const DefaultConcurrency = 4

type Summary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type Syncer interface {
	// SyncUser pulls the user's latest completed cycle and stores it.
	// Every failure is logged and reported as false; nothing is retried.
	SyncUser(ctx context.Context, userID string) bool

	// SyncAllUsers runs SyncUser for every stored credential. One user's
	// failure or panic never affects another.
	SyncAllUsers(ctx context.Context) Summary
}

type Service struct {
	tokens      oauth.TokenProvider
	fetcher     CycleFetcher
	writer      *Writer
	creds       repository.CredentialRepository
	concurrency int
	logger      *slog.Logger
}

var _ Syncer = (*Service)(nil)

type Config struct {
	Tokens      oauth.TokenProvider
	Fetcher     CycleFetcher
	Writer      *Writer
	Credentials repository.CredentialRepository
	Concurrency int
	Logger      *slog.Logger
}

func NewService(cfg Config) *Service {
	switch {
	case cfg.Tokens == nil:
		panic("xsync: nil token provider")
	case cfg.Fetcher == nil:
		panic("xsync: nil cycle fetcher")
	case cfg.Writer == nil:
		panic("xsync: nil writer")
	case cfg.Credentials == nil:
		panic("xsync: nil credential repository")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		tokens:      cfg.Tokens,
		fetcher:     cfg.Fetcher,
		writer:      cfg.Writer,
		creds:       cfg.Credentials,
		concurrency: concurrency,
		logger:      cfg.Logger,
	}
}

func (s *Service) SyncUser(ctx context.Context, userID string) bool {
	result := s.syncUser(ctx, userID)
	syncResults.WithLabelValues(result).Inc()
	return result == ResultStored
}

func (s *Service) syncUser(ctx context.Context, userID string) string {
	logger := s.logger.With(xslog.UserID(userID))

	accessToken, err := s.tokens.ActiveAccessToken(ctx, userID)
	if err != nil {
		if errors.Is(err, oauth.ErrNoCredentials) {
			logger.WarnContext(ctx, "no stored credentials for user")
		} else {
			logger.ErrorContext(ctx, "could not obtain access token", xslog.Error(err))
		}
		return ResultNoToken
	}

	cycle, err := s.fetcher.LatestCompletedCycle(ctx, accessToken)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch latest cycle", xslog.Error(err))
		return ResultNoCycle
	}
	if cycle == nil {
		logger.InfoContext(ctx, "no new scored cycle")
		return ResultNoCycle
	}

	record := Transform(cycle, userID)
	if record == nil {
		logger.WarnContext(ctx, "could not transform cycle", xslog.CycleID(cycle.ID))
		return ResultTransformFailed
	}

	if !s.writer.Store(ctx, record) {
		return ResultStoreFailed
	}
	return ResultStored
}

func (s *Service) SyncAllUsers(ctx context.Context) Summary {
	start := time.Now()
	defer func() { syncRunDuration.Observe(time.Since(start).Seconds()) }()

	creds, err := s.creds.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list credentials", xslog.Error(err))
		return Summary{}
	}

	var succeeded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, cred := range creds {
		g.Go(func() error {
			if s.safeSyncUser(gctx, cred.UserID) {
				succeeded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		Attempted: len(creds),
		Succeeded: int(succeeded.Load()),
	}
	summary.Failed = summary.Attempted - summary.Succeeded

	s.logger.InfoContext(ctx, "sync pass complete",
		xslog.SyncSummaryGroup(summary.Attempted, summary.Succeeded, summary.Failed),
		xslog.Duration(time.Since(start)),
	)
	return summary
}

func (s *Service) safeSyncUser(ctx context.Context, userID string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "panic while syncing user",
				xslog.UserID(userID),
				xslog.ErrorGroupWithStack(r),
			)
			ok = false
		}
	}()
	return s.SyncUser(ctx, userID)
}
