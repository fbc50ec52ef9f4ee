package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTierQuota(t *testing.T) {
	tests := []struct {
		name string
		tier PlanTier
		want TierQuota
	}{
		{"free tier is capped at 5", PlanTierFree, TierQuota{Messages: 5}},
		{"starter tier is capped at 50", PlanTierStarter, TierQuota{Messages: 50}},
		{"popular tier is unlimited", PlanTierPopular, TierQuota{Unlimited: true}},
		{"pro tier is unlimited", PlanTierPro, TierQuota{Unlimited: true}},
		{"unknown tier falls back to free", PlanTier("enterprise"), TierQuota{Messages: 5}},
		{"empty tier falls back to free", PlanTier(""), TierQuota{Messages: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetTierQuota(tt.tier))
		})
	}
}

func TestTierOrdering(t *testing.T) {
	// Exactly the two lowest tiers are quota-limited.
	tiers := []PlanTier{PlanTierFree, PlanTierStarter, PlanTierPopular, PlanTierPro}
	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i].Rank(), tiers[i-1].Rank())
	}
	for _, tier := range tiers {
		quota := GetTierQuota(tier)
		if tier.Rank() <= PlanTierStarter.Rank() {
			assert.False(t, quota.Unlimited, "tier %s should be quota-limited", tier)
			assert.Positive(t, quota.Messages)
		} else {
			assert.True(t, quota.Unlimited, "tier %s should be unlimited", tier)
		}
	}

	assert.False(t, PlanTier("enterprise").Valid())
	assert.True(t, PlanTierPro.Valid())
}

func TestUserEffectiveTier(t *testing.T) {
	tests := []struct {
		name string
		user User
		want PlanTier
	}{
		{
			name: "active popular subscription",
			user: User{SubscriptionTier: PlanTierPopular, SubscriptionStatus: SubscriptionStatusActive},
			want: PlanTierPopular,
		},
		{
			name: "trialing starter subscription",
			user: User{SubscriptionTier: PlanTierStarter, SubscriptionStatus: SubscriptionStatusTrialing},
			want: PlanTierStarter,
		},
		{
			name: "canceled pro subscription falls back to free",
			user: User{SubscriptionTier: PlanTierPro, SubscriptionStatus: SubscriptionStatusCanceled},
			want: PlanTierFree,
		},
		{
			name: "no subscription",
			user: User{},
			want: PlanTierFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.EffectiveTier())
		})
	}
}
