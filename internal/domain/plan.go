// Package domain contains core business types and interfaces.
//
// This file defines the subscription plan tiers and their chat message quotas.
package domain

// PlanTier represents the pricing tier of a subscription, ordered from least
// to most capable: free < starter < popular < pro.
type PlanTier string

const (
	PlanTierFree    PlanTier = "free"
	PlanTierStarter PlanTier = "starter"
	PlanTierPopular PlanTier = "popular"
	PlanTierPro     PlanTier = "pro"
)

// tierRank orders tiers for comparison. Unknown tiers rank below free.
var tierRank = map[PlanTier]int{
	PlanTierFree:    1,
	PlanTierStarter: 2,
	PlanTierPopular: 3,
	PlanTierPro:     4,
}

// Rank returns the ordering of a tier (higher is more capable), 0 if unknown.
func (t PlanTier) Rank() int {
	return tierRank[t]
}

// Valid reports whether the tier is one of the known plan tiers.
func (t PlanTier) Valid() bool {
	return tierRank[t] != 0
}

// TierQuota defines the chat message allowance for a subscription tier.
type TierQuota struct {
	Messages  int  // Message allowance for quota-limited tiers
	Unlimited bool // True for tiers without a message cap
}

// TierQuotas maps plan tiers to their message quotas.
// The two lowest tiers are quota-limited; the two highest are unlimited.
var TierQuotas = map[PlanTier]TierQuota{
	PlanTierFree:    {Messages: 5},
	PlanTierStarter: {Messages: 50},
	PlanTierPopular: {Unlimited: true},
	PlanTierPro:     {Unlimited: true},
}

// GetTierQuota returns the quota for a tier, defaulting to the free tier
// for unknown tiers.
func GetTierQuota(tier PlanTier) TierQuota {
	if quota, ok := TierQuotas[tier]; ok {
		return quota
	}
	return TierQuotas[PlanTierFree]
}
