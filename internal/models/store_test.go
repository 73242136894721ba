package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeatureWindowActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)

	assert.False(t, (&Store{Tier: TierNone}).FeatureWindowActive(now))
	assert.False(t, (&Store{Tier: TierMonthly}).FeatureWindowActive(now), "no window means not active")
	assert.True(t, (&Store{Tier: TierMonthly, FeaturedUntil: &future}).FeatureWindowActive(now))
	assert.False(t, (&Store{Tier: TierAnnual, FeaturedUntil: &past}).FeatureWindowActive(now))
	assert.False(t, (&Store{Tier: TierNone, FeaturedUntil: &future}).FeatureWindowActive(now))
}

func TestTierDuration(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, TierDuration(TierMonthly))
	assert.Equal(t, 365*24*time.Hour, TierDuration(TierAnnual))
}

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(TierMonthly))
	assert.True(t, ValidTier(TierAnnual))
	assert.False(t, ValidTier(TierNone))
	assert.False(t, ValidTier("lifetime"))
}

func TestValidStoreEventType(t *testing.T) {
	for _, valid := range []string{EventView, EventClick, EventWebsite, EventDealClick, EventPhoneReveal} {
		assert.True(t, ValidStoreEventType(valid))
	}
	assert.False(t, ValidStoreEventType("uninstall"))
	assert.False(t, ValidStoreEventType(""))
}
