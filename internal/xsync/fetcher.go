package xsync

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/garrettladley/whoopsync/internal/apperr"
	"github.com/garrettladley/whoopsync/internal/client/whoop"
	"github.com/garrettladley/whoopsync/internal/xslog"
)

const (
	opLatestCompletedCycle = "xsync.LatestCompletedCycle"

	lookback = 7 * 24 * time.Hour

	keyRateLimit      = "rate_limit"
	keyRateLimitReset = "rate_limit_reset"
)

type CycleFetcher interface {
	// LatestCompletedCycle returns the most recently started cycle that is
	// scored and closed, looking back seven days.
	//
	// Returns (nil, nil) when no cycle qualifies, and an *apperr.Error of
	// KindUpstreamData when the provider could not be reached or answered
	// with a non-2xx status.
	LatestCompletedCycle(ctx context.Context, accessToken string) (*whoop.Cycle, error)
}

type Fetcher struct {
	opts   []whoop.Option
	logger *slog.Logger
	now    func() time.Time
}

var _ CycleFetcher = (*Fetcher)(nil)

// NewFetcher builds a Fetcher whose per-token clients are configured with
// opts. The provider's rate limit headers are exported as a gauge.
func NewFetcher(logger *slog.Logger, opts ...whoop.Option) *Fetcher {
	f := &Fetcher{
		logger: logger,
		now:    time.Now,
	}
	f.opts = append([]whoop.Option{
		whoop.WithLogger(logger),
		whoop.WithRateLimitObserver(f.observeRateLimit),
	}, opts...)
	return f
}

func (f *Fetcher) observeRateLimit(ctx context.Context, info *whoop.RateLimitInfo) {
	upstreamRemaining.Set(float64(info.Remaining))
	if info.Exhausted() {
		f.logger.WarnContext(ctx, "whoop rate limit exhausted",
			slog.Int(keyRateLimit, info.Limit),
			slog.Duration(keyRateLimitReset, info.Reset))
	}
}

func (f *Fetcher) LatestCompletedCycle(ctx context.Context, accessToken string) (*whoop.Cycle, error) {
	client := whoop.NewWithAccessToken(accessToken, f.opts...)

	start := f.now().Add(-lookback)
	cycles, err := client.Cycle.List(ctx, &whoop.ListParams{Start: &start})
	if err != nil {
		return nil, apperr.UpstreamData(opLatestCompletedCycle, err)
	}
	if len(cycles) == 0 {
		f.logger.DebugContext(ctx, "no cycles in lookback window", xslog.Start(start))
		return nil, nil
	}

	return LatestCompleted(cycles), nil
}

// LatestCompleted picks the completed cycle with the latest start. Ties keep
// the provider's order.
func LatestCompleted(cycles []whoop.Cycle) *whoop.Cycle {
	completed := make([]whoop.Cycle, 0, len(cycles))
	for _, c := range cycles {
		if c.IsCompleted() {
			completed = append(completed, c)
		}
	}
	if len(completed) == 0 {
		return nil
	}

	slices.SortStableFunc(completed, func(a, b whoop.Cycle) int {
		return cmp.Compare(b.Start.UnixNano(), a.Start.UnixNano())
	})
	return &completed[0]
}
