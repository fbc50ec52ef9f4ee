package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/store"
)

// WarnRemainingThreshold is the remaining-message count at or below which
// the approaching-limit notice is raised (while remaining is still above zero).
const WarnRemainingThreshold = 2

// Decision is the outcome of a pre-submission quota check.
type Decision struct {
	Allowed   bool
	Unlimited bool
	Used      int
	Limit     int
	Remaining int // Meaningless when Unlimited
}

// Decide applies the quota policy for one submission.
//
// Unlimited tiers are always allowed. For quota-limited tiers,
// remaining = max(limit - used, 0), and the submission is blocked only when
// used > 0 and remaining <= 0. The used > 0 guard keeps "never sent a
// message" distinct from "sent exactly quota messages": a brand-new
// limited-plan user is never blocked before their first message, even with
// a zero quota.
func Decide(quota domain.TierQuota, used int) Decision {
	if quota.Unlimited {
		return Decision{Allowed: true, Unlimited: true, Used: used}
	}

	remaining := quota.Messages - used
	if remaining < 0 {
		remaining = 0
	}

	blocked := used > 0 && remaining <= 0

	return Decision{
		Allowed:   !blocked,
		Used:      used,
		Limit:     quota.Messages,
		Remaining: remaining,
	}
}

// usageDoc is the persisted shape of the usage counter.
type usageDoc struct {
	Count int `json:"count"`
}

// UsageTracker persists the count of live responses consumed against the
// active plan's quota. The counter is scoped per user, monotonically
// increases by one per live response on quota-limited tiers, and is never
// touched by cache hits.
type UsageTracker struct {
	store  store.StateStore
	key    string
	logger *slog.Logger
}

// NewUsageTracker creates a tracker persisted under the given store key.
func NewUsageTracker(st store.StateStore, key string, logger *slog.Logger) *UsageTracker {
	return &UsageTracker{store: st, key: key, logger: logger}
}

// Used returns the current counter value. Missing or malformed state reads
// as zero; corruption never blocks the user.
func (t *UsageTracker) Used(ctx context.Context) int {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		return 0
	}

	var doc usageDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.logger.Warn("discarding malformed usage counter", "key", t.key, "error", err)
		return 0
	}
	if doc.Count < 0 {
		return 0
	}
	return doc.Count
}

// Record increments the counter by one and persists it, returning the new
// value. Persistence errors are logged and swallowed; the returned value
// still reflects the increment.
func (t *UsageTracker) Record(ctx context.Context) int {
	used := t.Used(ctx) + 1

	data, err := json.Marshal(usageDoc{Count: used})
	if err != nil {
		t.logger.Warn("failed to encode usage counter", "key", t.key, "error", err)
		return used
	}
	if err := t.store.Put(ctx, t.key, data); err != nil {
		t.logger.Warn("failed to persist usage counter", "key", t.key, "error", err)
	}
	return used
}

// Reset clears the counter. Called when the governing subscription changes
// tier (a billing-side event, never part of the submission path).
func (t *UsageTracker) Reset(ctx context.Context) error {
	return t.store.Delete(ctx, t.key)
}
