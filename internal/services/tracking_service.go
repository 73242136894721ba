package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
)

var (
	ErrInvalidEvent = errors.New("invalid event payload")
	ErrUnknownStore = errors.New("unknown store")
	ErrRateLimited  = errors.New("rate limited")
)

// StoreFinder answers whether a tracked-event subject exists.
type StoreFinder interface {
	StoreExists(id uint) (bool, error)
}

// EventSink persists accepted tracked events.
type EventSink interface {
	CreateStoreEvent(event *models.StoreEvent) error
}

// TrackingService guards the public event-ingestion endpoint. Preconditions
// run in order, each gating the next: field presence, event-type membership,
// subject existence, per-origin ceiling, per-store ceiling. Past the gates,
// persistence is best-effort — a tracking row is never worth failing the
// caller's primary action over.
type TrackingService struct {
	stores  StoreFinder
	sink    EventSink
	limiter *RateLimiter
	cfg     *config.Config
	now     func() time.Time
}

func NewTrackingService(stores StoreFinder, sink EventSink, limiter *RateLimiter, cfg *config.Config) *TrackingService {
	return &TrackingService{stores: stores, sink: sink, limiter: limiter, cfg: cfg, now: time.Now}
}

// TrackEvent validates, throttles and records one public event. originIP is
// the caller's network address; it is hashed before use as a counter key.
func (s *TrackingService) TrackEvent(req *dto.TrackEventRequest, originIP string) error {
	if req.StoreID == 0 || req.EventType == "" || req.Source == "" {
		return ErrInvalidEvent
	}
	if !models.ValidStoreEventType(req.EventType) {
		return ErrInvalidEvent
	}

	exists, err := s.stores.StoreExists(req.StoreID)
	if err != nil {
		return fmt.Errorf("store lookup failed: %w", err)
	}
	if !exists {
		return ErrUnknownStore
	}

	storeKey := strconv.FormatUint(uint64(req.StoreID), 10)

	originAllowed, err := s.limiter.Allow(
		"evt:ip:"+HashOrigin(s.cfg.IPHashSecret, originIP)+":"+storeKey,
		s.cfg.EventIPWindow, s.cfg.EventIPLimit,
	)
	if err != nil {
		// Counter store down: tracking is best-effort, so drop the event
		// rather than bounce or admit unbounded traffic.
		slog.Error("origin rate limit check failed", "store_id", req.StoreID, "error", err)
		return nil
	}
	if !originAllowed {
		slog.Warn("event rejected: per-origin ceiling", "store_id", req.StoreID, "event_type", req.EventType)
		return ErrRateLimited
	}

	storeAllowed, err := s.limiter.Allow(
		"evt:store:"+storeKey,
		s.cfg.EventStoreWindow, s.cfg.EventStoreLimit,
	)
	if err != nil {
		slog.Error("store rate limit check failed", "store_id", req.StoreID, "error", err)
		return nil
	}
	if !storeAllowed {
		slog.Warn("event rejected: per-store ceiling", "store_id", req.StoreID, "event_type", req.EventType)
		return ErrRateLimited
	}

	event := &models.StoreEvent{
		StoreID:   req.StoreID,
		EventType: req.EventType,
		Source:    req.Source,
		CreatedAt: s.now(),
	}
	if err := s.sink.CreateStoreEvent(event); err != nil {
		// Swallowed: the caller's action already happened, the row is lost.
		slog.Error("store event persist failed", "store_id", req.StoreID, "event_type", req.EventType, "error", err)
	}
	return nil
}
