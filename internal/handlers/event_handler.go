package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	trackingService *services.TrackingService
}

func NewEventHandler(trackingService *services.TrackingService) *EventHandler {
	return &EventHandler{trackingService: trackingService}
}

// Track accepts a public tracked event. 400 and 429 are deliberately distinct
// so malformed traffic and throttled traffic are distinguishable; which
// ceiling rejected a request shows up in logs only.
func (h *EventHandler) Track(c *fiber.Ctx) error {
	var req dto.TrackEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	err := h.trackingService.TrackEvent(&req, c.IP())
	switch {
	case err == nil:
		return c.JSON(dto.TrackEventResponse{Tracked: true})
	case errors.Is(err, services.ErrInvalidEvent):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid event",
		})
	case errors.Is(err, services.ErrUnknownStore):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown store",
		})
	case errors.Is(err, services.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Error: true, Message: "Too many requests",
		})
	default:
		slog.Error("event tracking failed", "store_id", req.StoreID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
