package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForPriceID(t *testing.T) {
	svc := NewStripeService("sk_test_x", "whsec_x", PriceConfig{
		StarterMonthlyPriceID: "price_starter_m",
		StarterYearlyPriceID:  "price_starter_y",
		PopularMonthlyPriceID: "price_popular_m",
		ProMonthlyPriceID:     "price_pro_m",
	})

	tests := []struct {
		priceID string
		want    string
	}{
		{"price_starter_m", "starter"},
		{"price_starter_y", "starter"},
		{"price_popular_m", "popular"},
		{"price_pro_m", "pro"},
		{"price_unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.TierForPriceID(tt.priceID), "priceID %q", tt.priceID)
	}
}

func TestTierForPriceID_EmptyConfigDoesNotMapEmptyID(t *testing.T) {
	// Unset price IDs must not register "" as a valid price.
	svc := NewStripeService("sk_test_x", "whsec_x", PriceConfig{})
	assert.Equal(t, "", svc.TierForPriceID(""))
}
