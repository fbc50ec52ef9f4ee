package chat

import (
	"context"
	"testing"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		quota         domain.TierQuota
		used          int
		wantAllowed   bool
		wantRemaining int
	}{
		{
			name:          "fresh limited user",
			quota:         domain.TierQuota{Messages: 5},
			used:          0,
			wantAllowed:   true,
			wantRemaining: 5,
		},
		{
			name:          "limited user under quota",
			quota:         domain.TierQuota{Messages: 5},
			used:          3,
			wantAllowed:   true,
			wantRemaining: 2,
		},
		{
			name:          "limited user at quota",
			quota:         domain.TierQuota{Messages: 5},
			used:          5,
			wantAllowed:   false,
			wantRemaining: 0,
		},
		{
			name:          "limited user past quota",
			quota:         domain.TierQuota{Messages: 5},
			used:          7,
			wantAllowed:   false,
			wantRemaining: 0,
		},
		{
			// used == 0 always admits the submission, even with no
			// allowance at all.
			name:          "zero quota but nothing sent yet",
			quota:         domain.TierQuota{Messages: 0},
			used:          0,
			wantAllowed:   true,
			wantRemaining: 0,
		},
		{
			name:          "zero quota after one message",
			quota:         domain.TierQuota{Messages: 0},
			used:          1,
			wantAllowed:   false,
			wantRemaining: 0,
		},
		{
			name:        "unlimited tier ignores usage",
			quota:       domain.TierQuota{Unlimited: true},
			used:        10000,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.quota, tt.used)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.quota.Unlimited, d.Unlimited)
			assert.Equal(t, tt.used, d.Used)
			if !tt.quota.Unlimited {
				assert.Equal(t, tt.wantRemaining, d.Remaining)
			}
		})
	}
}

func TestDecide_BlockedStaysBlocked(t *testing.T) {
	// Once exhausted, no larger used value re-admits the user.
	quota := domain.TierQuota{Messages: 5}
	for used := 5; used < 20; used++ {
		assert.False(t, Decide(quota, used).Allowed, "used=%d", used)
	}
}

func TestUsageTracker_RecordAndUsed(t *testing.T) {
	st := newMemStore()
	tr := NewUsageTracker(st, "chat/u1/usage", testLogger())
	ctx := context.Background()

	assert.Equal(t, 0, tr.Used(ctx), "missing state reads as zero")

	assert.Equal(t, 1, tr.Record(ctx))
	assert.Equal(t, 2, tr.Record(ctx))
	assert.Equal(t, 2, tr.Used(ctx))

	// A second tracker over the same store sees the persisted value.
	again := NewUsageTracker(st, "chat/u1/usage", testLogger())
	assert.Equal(t, 2, again.Used(ctx))
}

func TestUsageTracker_MalformedStateReadsAsZero(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, "chat/u1/usage", []byte("garbage")))

	tr := NewUsageTracker(st, "chat/u1/usage", testLogger())
	assert.Equal(t, 0, tr.Used(ctx))

	require.NoError(t, st.Put(ctx, "chat/u1/usage", []byte(`{"count":-3}`)))
	assert.Equal(t, 0, tr.Used(ctx), "negative counts are discarded")
}

func TestUsageTracker_Reset(t *testing.T) {
	st := newMemStore()
	tr := NewUsageTracker(st, "chat/u1/usage", testLogger())
	ctx := context.Background()

	tr.Record(ctx)
	tr.Record(ctx)
	require.NoError(t, tr.Reset(ctx))
	assert.Equal(t, 0, tr.Used(ctx))
}
