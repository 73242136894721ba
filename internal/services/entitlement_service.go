package services

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"github.com/google/uuid"
)

// TierWriter is the only mutation surface the checkout and renewal handlers
// receive. It can touch a store's tier and exposure window, nothing else —
// in particular it cannot reach the operator-owned is_featured flag.
type TierWriter interface {
	UpsertTier(storeID uint, tier string, until time.Time) error
	ExtendFeatureWindow(storeID uint, until time.Time) error
}

// SubscriptionWriter is the only mutation surface the subscription-lifecycle
// handlers receive. Both operations upsert by the external subscription id so
// out-of-order delivery (updated before created) is safe.
type SubscriptionWriter interface {
	UpsertSubscription(sub *models.Subscription) error
	SetSubscriptionStatus(stripeSubscriptionID, status string) error
}

// EntitlementService applies billing events to the entitlement records. Each
// handler owns a disjoint write responsibility; the lifecycle events arrive
// at-least-once and in no guaranteed order, so no handler depends on another
// having run first.
type EntitlementService struct {
	tiers TierWriter
	subs  SubscriptionWriter
	now   func() time.Time
}

func NewEntitlementService(tiers TierWriter, subs SubscriptionWriter) *EntitlementService {
	return &EntitlementService{tiers: tiers, subs: subs, now: time.Now}
}

// HandleCheckoutCompleted grants the initial tier and exposure window. It
// never creates the subscription record; customer.subscription.created owns
// that.
func (s *EntitlementService) HandleCheckoutCompleted(session *dto.CheckoutSession) error {
	storeID, ok := parseStoreID(session.Metadata)
	if !ok {
		slog.Warn("checkout completed without usable store metadata", "session_id", session.ID)
		return nil
	}

	tier := session.Metadata["tier"]
	if !models.ValidTier(tier) {
		slog.Warn("checkout completed with unknown tier", "session_id", session.ID, "tier", tier)
		return nil
	}

	until := s.now().Add(models.TierDuration(tier))
	if err := s.tiers.UpsertTier(storeID, tier, until); err != nil {
		return err
	}

	slog.Info("tier granted", "store_id", storeID, "tier", tier, "featured_until", until)
	return nil
}

// HandleSubscriptionCreated mirrors the new subscription locally. It never
// touches the store's tier.
func (s *EntitlementService) HandleSubscriptionCreated(sub *dto.SubscriptionObject) error {
	if sub.ID == "" {
		slog.Warn("subscription created event without subscription id")
		return nil
	}

	rec := s.subscriptionRecord(sub)
	if err := s.subs.UpsertSubscription(rec); err != nil {
		return err
	}

	slog.Info("subscription recorded", "stripe_subscription_id", sub.ID, "status", rec.Status)
	return nil
}

// HandleSubscriptionUpdated upserts the subscription record and, only when the
// new status is active, extends the store's exposure window to the new period
// end. Absent store metadata degrades to a status-only update: the event
// originated outside the normal checkout flow and there is no store to extend.
func (s *EntitlementService) HandleSubscriptionUpdated(sub *dto.SubscriptionObject) error {
	if sub.ID == "" {
		slog.Warn("subscription updated event without subscription id")
		return nil
	}

	storeID, hasStore := parseStoreID(sub.Metadata)
	if !hasStore {
		slog.Warn("subscription updated without store metadata; status-only update", "stripe_subscription_id", sub.ID)
		return s.subs.SetSubscriptionStatus(sub.ID, normalizeStatus(sub.Status))
	}

	rec := s.subscriptionRecord(sub)
	if err := s.subs.UpsertSubscription(rec); err != nil {
		return err
	}

	if rec.Status == models.SubscriptionActive && sub.CurrentPeriodEnd > 0 {
		// Extend to the new period end even if the old window already lapsed.
		until := time.Unix(sub.CurrentPeriodEnd, 0)
		if err := s.tiers.ExtendFeatureWindow(storeID, until); err != nil {
			return err
		}
		slog.Info("feature window extended", "store_id", storeID, "featured_until", until)
	}

	return nil
}

// HandleSubscriptionDeleted marks the subscription canceled. The store keeps
// its tier and whatever exposure window it already paid for; expiry is a
// computed fact, not a stored one.
func (s *EntitlementService) HandleSubscriptionDeleted(sub *dto.SubscriptionObject) error {
	if sub.ID == "" {
		slog.Warn("subscription deleted event without subscription id")
		return nil
	}

	if err := s.subs.SetSubscriptionStatus(sub.ID, models.SubscriptionCanceled); err != nil {
		return err
	}

	slog.Info("subscription canceled", "stripe_subscription_id", sub.ID)
	return nil
}

// HandlePaymentFailed marks the associated subscription past_due. Invoices
// with no subscription id (one-off charges) are acknowledged and skipped.
func (s *EntitlementService) HandlePaymentFailed(inv *dto.InvoiceObject) error {
	if inv.Subscription == "" {
		slog.Info("payment failed without associated subscription", "invoice_id", inv.ID)
		return nil
	}

	if err := s.subs.SetSubscriptionStatus(inv.Subscription, models.SubscriptionPastDue); err != nil {
		return err
	}

	slog.Warn("subscription past due", "stripe_subscription_id", inv.Subscription, "invoice_id", inv.ID)
	return nil
}

func (s *EntitlementService) subscriptionRecord(sub *dto.SubscriptionObject) *models.Subscription {
	rec := &models.Subscription{
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer,
		Status:               normalizeStatus(sub.Status),
	}
	if sub.CurrentPeriodEnd > 0 {
		rec.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0)
	}
	if storeID, ok := parseStoreID(sub.Metadata); ok {
		rec.StoreID = storeID
	}
	if raw, ok := sub.Metadata["user_id"]; ok {
		if userID, err := uuid.Parse(raw); err == nil {
			rec.UserID = &userID
		} else {
			slog.Warn("subscription metadata carries malformed user id", "stripe_subscription_id", sub.ID)
		}
	}
	if tier, ok := sub.Metadata["tier"]; ok && models.ValidTier(tier) {
		rec.Tier = tier
	}
	return rec
}

func parseStoreID(metadata map[string]string) (uint, bool) {
	raw, ok := metadata["store_id"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		slog.Warn("malformed store id in event metadata", "store_id", raw)
		return 0, false
	}
	return uint(id), true
}

func normalizeStatus(status string) string {
	switch status {
	case "active", "trialing":
		return models.SubscriptionActive
	case "past_due", "unpaid":
		return models.SubscriptionPastDue
	case "canceled":
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionIncomplete
	}
}
