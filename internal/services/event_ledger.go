package services

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedger implements Ledger on the webhook_events table.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) HasProcessed(eventID string) (bool, error) {
	var entry models.WebhookEvent
	err := l.db.Select("id").Where("event_id = ?", eventID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *GormLedger) RecordProcessed(eventID, eventType string, payload []byte) error {
	entry := models.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
	}
	if len(payload) > 0 {
		entry.Payload = datatypes.JSON(payload)
	}
	// Two instances racing on a redelivered event both reach here; the unique
	// index makes the second write a no-op instead of an error.
	return l.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&entry).Error
}
