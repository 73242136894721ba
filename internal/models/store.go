package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store tier values. A store with TierNone has never purchased placement.
const (
	TierNone    = "none"
	TierMonthly = "monthly"
	TierAnnual  = "annual"
)

// Store is a directory listing. Tier and FeaturedUntil are written only by the
// billing webhook handlers; IsFeatured is written only by operator actions and
// is never touched by billing events.
type Store struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OwnerID       *uuid.UUID     `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Website       string         `gorm:"size:500" json:"website"`
	Tier          string         `gorm:"size:20;not null;default:'none'" json:"tier"`
	FeaturedUntil *time.Time     `json:"featured_until,omitempty"`
	IsFeatured    bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// FeatureWindowActive reports whether the paid exposure window covers now.
// Expiration is computed, never stored; cancellation leaves Tier and
// FeaturedUntil untouched.
func (s *Store) FeatureWindowActive(now time.Time) bool {
	return s.Tier != TierNone && s.FeaturedUntil != nil && now.Before(*s.FeaturedUntil)
}

// ValidTier reports whether t is a purchasable tier.
func ValidTier(t string) bool {
	return t == TierMonthly || t == TierAnnual
}

// TierDuration is the exposure window granted at checkout for a tier.
func TierDuration(tier string) time.Duration {
	switch tier {
	case TierAnnual:
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}
