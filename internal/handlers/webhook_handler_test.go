package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type memoryLedger struct {
	seen map[string]string
}

func (l *memoryLedger) HasProcessed(eventID string) (bool, error) {
	_, ok := l.seen[eventID]
	return ok, nil
}

func (l *memoryLedger) RecordProcessed(eventID, eventType string, _ []byte) error {
	l.seen[eventID] = eventType
	return nil
}

type recordingEntitlements struct {
	tierGrants map[uint]string
	statuses   map[string]string
}

func (r *recordingEntitlements) UpsertTier(storeID uint, tier string, _ time.Time) error {
	r.tierGrants[storeID] = tier
	return nil
}

func (r *recordingEntitlements) ExtendFeatureWindow(uint, time.Time) error { return nil }

func (r *recordingEntitlements) UpsertSubscription(sub *models.Subscription) error {
	r.statuses[sub.StripeSubscriptionID] = sub.Status
	return nil
}

func (r *recordingEntitlements) SetSubscriptionStatus(id, status string) error {
	r.statuses[id] = status
	return nil
}

func newWebhookTestApp() (*fiber.App, *recordingEntitlements, *memoryLedger) {
	rec := &recordingEntitlements{tierGrants: make(map[uint]string), statuses: make(map[string]string)}
	ledger := &memoryLedger{seen: make(map[string]string)}
	svc := services.NewWebhookService(ledger, services.NewEntitlementService(rec, rec))
	handler := NewWebhookHandler(svc, testWebhookSecret)

	app := fiber.New()
	app.Post("/api/webhooks/billing", handler.HandleStripe)
	return app, rec, ledger
}

func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func webhookRequest(payload []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/billing", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	return req
}

func checkoutEventPayload(eventID string) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       "cs_1",
				"metadata": map[string]string{"store_id": "42", "tier": "monthly"},
			},
		},
	})
	return payload
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app, rec, _ := newWebhookTestApp()

	resp, err := app.Test(webhookRequest(checkoutEventPayload("evt_1"), ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, rec.tierGrants, "unauthenticated payloads must cause no side effects")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, rec, _ := newWebhookTestApp()

	payload := checkoutEventPayload("evt_1")
	resp, err := app.Test(webhookRequest(payload, signStripePayload(payload, "whsec_wrong")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, rec.tierGrants)
}

func TestWebhookRejectsTamperedPayload(t *testing.T) {
	app, rec, _ := newWebhookTestApp()

	signature := signStripePayload(checkoutEventPayload("evt_1"), testWebhookSecret)
	tampered := checkoutEventPayload("evt_other")
	resp, err := app.Test(webhookRequest(tampered, signature))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, rec.tierGrants)
}

func TestWebhookProcessesSignedEvent(t *testing.T) {
	app, rec, ledger := newWebhookTestApp()

	payload := checkoutEventPayload("evt_1")
	resp, err := app.Test(webhookRequest(payload, signStripePayload(payload, testWebhookSecret)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"processed"`)
	assert.Equal(t, "monthly", rec.tierGrants[42])
	assert.Contains(t, ledger.seen, "evt_1")
}

func TestWebhookAcknowledgesDuplicate(t *testing.T) {
	app, rec, _ := newWebhookTestApp()

	payload := checkoutEventPayload("evt_1")
	for i := 0; i < 2; i++ {
		resp, err := app.Test(webhookRequest(payload, signStripePayload(payload, testWebhookSecret)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		if i == 1 {
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), `"status":"duplicate"`)
		}
	}
	assert.Len(t, rec.tierGrants, 1)
}

func TestWebhookAcknowledgesIgnoredType(t *testing.T) {
	app, rec, _ := newWebhookTestApp()

	payload, _ := json.Marshal(map[string]interface{}{
		"id":   "evt_9",
		"type": "customer.created",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "cus_1"}},
	})
	resp, err := app.Test(webhookRequest(payload, signStripePayload(payload, testWebhookSecret)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "intentionally ignored types must not trigger redelivery")
	assert.Empty(t, rec.tierGrants)
	assert.Empty(t, rec.statuses)
}

func TestWebhookUnconfiguredSecret(t *testing.T) {
	svc := services.NewWebhookService(&memoryLedger{seen: map[string]string{}}, nil)
	handler := NewWebhookHandler(svc, "")
	app := fiber.New()
	app.Post("/api/webhooks/billing", handler.HandleStripe)

	resp, err := app.Test(webhookRequest(checkoutEventPayload("evt_1"), "t=1,v1=deadbeef"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
