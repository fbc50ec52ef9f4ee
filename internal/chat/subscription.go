package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/metrics"
)

// DefaultRefreshInterval is the minimum time between refreshes of a
// subscription snapshot from the plan source.
const DefaultRefreshInterval = 60 * time.Second

// Snapshot is the controller's view of the active plan.
type Snapshot struct {
	Tier        domain.PlanTier
	Quota       int // Message allowance; meaningless when Unlimited
	Unlimited   bool
	RefreshedAt time.Time
}

// PlanSource supplies the current plan tier for one subject, typically by
// reading the subscription record from the database.
type PlanSource interface {
	CurrentTier(ctx context.Context) (domain.PlanTier, error)
}

// PlanSourceFunc adapts a function to the PlanSource interface.
type PlanSourceFunc func(ctx context.Context) (domain.PlanTier, error)

func (f PlanSourceFunc) CurrentTier(ctx context.Context) (domain.PlanTier, error) {
	return f(ctx)
}

// StaticPlanSource always reports the given tier. Unauthenticated sessions
// use StaticPlanSource(domain.PlanTierFree).
func StaticPlanSource(tier domain.PlanTier) PlanSource {
	return PlanSourceFunc(func(context.Context) (domain.PlanTier, error) {
		return tier, nil
	})
}

// SubscriptionReader caches a Snapshot and refreshes it from the plan source
// at most once per interval. Refresh failures are logged and swallowed: the
// previous snapshot keeps serving (stale-but-available) rather than blocking
// the user.
type SubscriptionReader struct {
	source   PlanSource
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	snap    Snapshot
	fetched bool
}

// NewSubscriptionReader creates a reader over the given source.
// A non-positive interval selects DefaultRefreshInterval.
func NewSubscriptionReader(source PlanSource, interval time.Duration, logger *slog.Logger) *SubscriptionReader {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &SubscriptionReader{
		source:   source,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot returns the current view of the plan, refreshing it first when
// the interval has elapsed (or when nothing has been fetched yet).
func (r *SubscriptionReader) Snapshot(ctx context.Context) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.fetched && now.Sub(r.snap.RefreshedAt) < r.interval {
		return r.snap
	}

	tier, err := r.source.CurrentTier(ctx)
	if err != nil {
		metrics.PlanRefreshesTotal.WithLabelValues("error").Inc()
		r.logger.Warn("subscription refresh failed", "error", err)
		if !r.fetched {
			// Nothing to fall back on: assume the lowest tier.
			r.snap = snapshotFor(domain.PlanTierFree, now)
			r.fetched = true
		}
		// Stale-but-available: keep serving the previous snapshot. The
		// refresh timestamp is not advanced, so the next call retries.
		return r.snap
	}

	metrics.PlanRefreshesTotal.WithLabelValues("ok").Inc()
	r.snap = snapshotFor(tier, now)
	r.fetched = true
	return r.snap
}

// Refreshed reports when the snapshot was last successfully refreshed.
func (r *SubscriptionReader) Refreshed() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.RefreshedAt
}

func snapshotFor(tier domain.PlanTier, now time.Time) Snapshot {
	quota := domain.GetTierQuota(tier)
	return Snapshot{
		Tier:        tier,
		Quota:       quota.Messages,
		Unlimited:   quota.Unlimited,
		RefreshedAt: now,
	}
}
