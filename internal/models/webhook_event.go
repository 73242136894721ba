package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the idempotency ledger: one row per distinct Stripe event id
// that was handled successfully. A row is written only after the handler
// returns, so a failed delivery stays absent and Stripe's retry reprocesses it.
type WebhookEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"uniqueIndex;not null;size:255" json:"event_id"`
	EventType   string         `gorm:"not null;size:100;index" json:"event_type"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ProcessedAt time.Time      `gorm:"not null;index" json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
