package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription status values mirror the billing provider's lifecycle.
// canceled is terminal; it never triggers a Store tier write.
const (
	SubscriptionActive     = "active"
	SubscriptionPastDue    = "past_due"
	SubscriptionCanceled   = "canceled"
	SubscriptionIncomplete = "incomplete"
)

// Subscription is the local mirror of a Stripe subscription. Rows are upserted
// by stripe_subscription_id because lifecycle events arrive at-least-once and
// out of order.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StripeSubscriptionID string     `gorm:"uniqueIndex;not null;size:255" json:"stripe_subscription_id"`
	StripeCustomerID     string     `gorm:"index;size:255" json:"stripe_customer_id"`
	StoreID              uint       `gorm:"index" json:"store_id"`
	UserID               *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Tier                 string     `gorm:"size:20" json:"tier"`
	Status               string     `gorm:"not null;default:'incomplete';size:50" json:"status"`
	CurrentPeriodEnd     time.Time  `json:"current_period_end"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
