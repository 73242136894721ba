package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStoreFinder struct {
	known map[uint]bool
	err   error
}

func (f *fakeStoreFinder) StoreExists(id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

type fakeEventSink struct {
	events []*models.StoreEvent
	err    error
}

func (f *fakeEventSink) CreateStoreEvent(event *models.StoreEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func trackingTestConfig() *config.Config {
	return &config.Config{
		IPHashSecret:     "test-secret",
		EventIPLimit:     3,
		EventIPWindow:    time.Minute,
		EventStoreLimit:  5,
		EventStoreWindow: time.Hour,
	}
}

func newTestTrackingService(finder *fakeStoreFinder, sink *fakeEventSink) *TrackingService {
	limiter := NewRateLimiter(NewMemoryCounterStore())
	return NewTrackingService(finder, sink, limiter, trackingTestConfig())
}

func validRequest() *dto.TrackEventRequest {
	return &dto.TrackEventRequest{StoreID: 42, EventType: models.EventDealClick, Source: "listing"}
}

func TestTrackEventSuccess(t *testing.T) {
	sink := &fakeEventSink{}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{42: true}}, sink)

	require.NoError(t, svc.TrackEvent(validRequest(), "203.0.113.9"))
	require.Len(t, sink.events, 1)
	assert.Equal(t, uint(42), sink.events[0].StoreID)
	assert.Equal(t, models.EventDealClick, sink.events[0].EventType)
	assert.Equal(t, "listing", sink.events[0].Source)
}

func TestTrackEventFieldValidation(t *testing.T) {
	sink := &fakeEventSink{}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{42: true}}, sink)

	cases := []*dto.TrackEventRequest{
		{EventType: models.EventClick, Source: "listing"},
		{StoreID: 42, Source: "listing"},
		{StoreID: 42, EventType: models.EventClick},
		{StoreID: 42, EventType: "uninstall", Source: "listing"},
	}
	for _, req := range cases {
		err := svc.TrackEvent(req, "203.0.113.9")
		assert.ErrorIs(t, err, ErrInvalidEvent)
	}
	assert.Empty(t, sink.events)
}

func TestTrackEventUnknownStore(t *testing.T) {
	sink := &fakeEventSink{}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{}}, sink)

	err := svc.TrackEvent(validRequest(), "203.0.113.9")
	assert.ErrorIs(t, err, ErrUnknownStore)
	assert.Empty(t, sink.events)
}

func TestTrackEventStoreLookupFailure(t *testing.T) {
	svc := newTestTrackingService(&fakeStoreFinder{err: errors.New("db down")}, &fakeEventSink{})

	err := svc.TrackEvent(validRequest(), "203.0.113.9")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownStore)
}

func TestTrackEventPerOriginCeiling(t *testing.T) {
	sink := &fakeEventSink{}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{42: true}}, sink)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackEvent(validRequest(), "203.0.113.9"))
	}
	err := svc.TrackEvent(validRequest(), "203.0.113.9")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, sink.events, 3)

	// A different origin still has budget against the same store.
	require.NoError(t, svc.TrackEvent(validRequest(), "198.51.100.7"))
}

func TestTrackEventPerStoreCeiling(t *testing.T) {
	sink := &fakeEventSink{}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{42: true, 43: true}}, sink)

	// Five distinct origins exhaust the per-store budget without any origin
	// hitting its own ceiling.
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.TrackEvent(validRequest(), fmt.Sprintf("203.0.113.%d", i)))
	}
	err := svc.TrackEvent(validRequest(), "203.0.113.200")
	assert.ErrorIs(t, err, ErrRateLimited)

	// Another store is unaffected.
	other := validRequest()
	other.StoreID = 43
	require.NoError(t, svc.TrackEvent(other, "203.0.113.200"))
}

func TestTrackEventPersistFailureIsSwallowed(t *testing.T) {
	sink := &fakeEventSink{err: errors.New("insert failed")}
	svc := newTestTrackingService(&fakeStoreFinder{known: map[uint]bool{42: true}}, sink)

	err := svc.TrackEvent(validRequest(), "203.0.113.9")
	assert.NoError(t, err, "tracking must never fail the caller's primary action")
}
