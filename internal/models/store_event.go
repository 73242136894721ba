package models

import "time"

// Tracked event types accepted by the public ingestion endpoint.
const (
	EventView        = "view"
	EventClick       = "click"
	EventWebsite     = "website_click"
	EventDealClick   = "deal_click"
	EventPhoneReveal = "phone_reveal"
)

// StoreEvent is a best-effort analytics row written by the public ingestion
// endpoint after validation and rate limiting.
type StoreEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoreID   uint      `gorm:"not null;index" json:"store_id"`
	EventType string    `gorm:"not null;size:50;index" json:"event_type"`
	Source    string    `gorm:"size:100" json:"source"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// ValidStoreEventType reports membership in the fixed event-type enum.
func ValidStoreEventType(t string) bool {
	switch t {
	case EventView, EventClick, EventWebsite, EventDealClick, EventPhoneReveal:
		return true
	}
	return false
}
