package services

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntitlementStore is the GORM-backed implementation of the narrow writer and
// finder seams (TierWriter, SubscriptionWriter, StoreFinder, EventSink).
// It deliberately exposes no way to write Store.IsFeatured; that column
// belongs to StoreService.SetFeatured alone.
type EntitlementStore struct {
	db *gorm.DB
}

func NewEntitlementStore(db *gorm.DB) *EntitlementStore {
	return &EntitlementStore{db: db}
}

func (s *EntitlementStore) UpsertTier(storeID uint, tier string, until time.Time) error {
	res := s.db.Model(&models.Store{}).Where("id = ?", storeID).Updates(map[string]interface{}{
		"tier":           tier,
		"featured_until": until,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		slog.Warn("tier grant targets unknown store", "store_id", storeID)
	}
	return nil
}

func (s *EntitlementStore) ExtendFeatureWindow(storeID uint, until time.Time) error {
	res := s.db.Model(&models.Store{}).Where("id = ?", storeID).
		Update("featured_until", until)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		slog.Warn("window extension targets unknown store", "store_id", storeID)
	}
	return nil
}

func (s *EntitlementStore) UpsertSubscription(sub *models.Subscription) error {
	// Only overwrite columns the event actually supplied; a degraded event
	// must not blank out fields a richer earlier event already stored.
	assignments := map[string]interface{}{
		"status":     sub.Status,
		"updated_at": time.Now(),
	}
	if sub.StripeCustomerID != "" {
		assignments["stripe_customer_id"] = sub.StripeCustomerID
	}
	if sub.StoreID != 0 {
		assignments["store_id"] = sub.StoreID
	}
	if sub.UserID != nil {
		assignments["user_id"] = *sub.UserID
	}
	if sub.Tier != "" {
		assignments["tier"] = sub.Tier
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		assignments["current_period_end"] = sub.CurrentPeriodEnd
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(sub).Error
}

func (s *EntitlementStore) SetSubscriptionStatus(stripeSubscriptionID, status string) error {
	// Upsert so a status event arriving before the created event still leaves
	// a record behind.
	sub := models.Subscription{
		ID:                   uuid.New(),
		StripeSubscriptionID: stripeSubscriptionID,
		Status:               status,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}),
	}).Create(&sub).Error
}

func (s *EntitlementStore) StoreExists(id uint) (bool, error) {
	var store models.Store
	err := s.db.Select("id").Where("id = ?", id).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *EntitlementStore) CreateStoreEvent(event *models.StoreEvent) error {
	return s.db.Create(event).Error
}
