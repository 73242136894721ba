package services

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/stripe/stripe-go/v82"
)

// Ledger records which Stripe event ids have already been handled. The check
// happens before dispatch and the write only after a handler succeeds: a
// failed handler leaves no row, so Stripe's retry reprocesses the event
// instead of it being silently dropped.
type Ledger interface {
	HasProcessed(eventID string) (bool, error)
	RecordProcessed(eventID, eventType string, payload []byte) error
}

// WebhookService routes verified Stripe events to exactly one entitlement
// handler, wrapped in the idempotency ledger.
type WebhookService struct {
	ledger       Ledger
	entitlements *EntitlementService
}

func NewWebhookService(ledger Ledger, entitlements *EntitlementService) *WebhookService {
	return &WebhookService{ledger: ledger, entitlements: entitlements}
}

// ProcessEvent dispatches a verified event. It reports duplicate=true for
// event ids already in the ledger; those are acknowledged without side
// effects. Unknown event types are logged and acknowledged so Stripe does not
// retry types this system intentionally ignores.
func (s *WebhookService) ProcessEvent(event *stripe.Event) (duplicate bool, err error) {
	seen, err := s.ledger.HasProcessed(event.ID)
	if err != nil {
		return false, fmt.Errorf("ledger check failed: %w", err)
	}
	if seen {
		slog.Info("webhook event already processed", "event_id", event.ID, "event_type", event.Type)
		return true, nil
	}

	if err := s.dispatch(event); err != nil {
		return false, err
	}

	if err := s.ledger.RecordProcessed(event.ID, string(event.Type), event.Data.Raw); err != nil {
		// The handler side effects are idempotent upserts, so letting Stripe
		// redeliver is safer than marking an unrecorded event as done.
		return false, fmt.Errorf("ledger write failed: %w", err)
	}

	return false, nil
}

func (s *WebhookService) dispatch(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session dto.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.entitlements.HandleCheckoutCompleted(&session)
	case "customer.subscription.created":
		var sub dto.SubscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.entitlements.HandleSubscriptionCreated(&sub)
	case "customer.subscription.updated":
		var sub dto.SubscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.entitlements.HandleSubscriptionUpdated(&sub)
	case "customer.subscription.deleted":
		var sub dto.SubscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.entitlements.HandleSubscriptionDeleted(&sub)
	case "invoice.payment_failed":
		var inv dto.InvoiceObject
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return s.entitlements.HandlePaymentFailed(&inv)
	default:
		slog.Info("webhook event type ignored", "event_id", event.ID, "event_type", event.Type)
		return nil
	}
}
