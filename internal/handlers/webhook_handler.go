package handlers

import (
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82/webhook"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
	secret         string
}

func NewWebhookHandler(webhookService *services.WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService, secret: secret}
}

// HandleStripe processes billing callbacks. Signature verification is the
// authentication for this endpoint and runs before any payload interpretation;
// a missing or bad signature fails closed with no side effects. Any 2xx stops
// Stripe's redelivery, so duplicates and ignored types are acknowledged too.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhooks not configured",
		})
	}

	sigHeader := c.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	event, err := webhook.ConstructEventWithOptions(c.Body(), sigHeader, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid signature",
		})
	}

	duplicate, err := h.webhookService.ProcessEvent(&event)
	if err != nil {
		slog.Error("webhook processing failed", "event_id", event.ID, "event_type", event.Type, "error", err)
		// Non-2xx makes Stripe redeliver; the ledger was not written.
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	status := "processed"
	if duplicate {
		status = "duplicate"
	}
	slog.Info("webhook received", "event_id", event.ID, "event_type", event.Type, "status", status)
	return c.JSON(fiber.Map{"received": true, "status": status})
}
