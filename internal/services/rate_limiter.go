package services

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"time"

	"gorm.io/gorm"
)

// CounterStore is a durable, atomically incrementable fixed-window counter.
// CheckAndIncrement performs increment-then-compare in one round-trip: with
// one slot left under the ceiling, two concurrent callers can never both be
// allowed. Process memory is no home for these counts — they must survive
// restarts and be shared by every running instance.
type CounterStore interface {
	CheckAndIncrement(key string, windowStart time.Time, ceiling int64) (bool, error)
}

// RateLimiter buckets time into fixed windows over a CounterStore.
type RateLimiter struct {
	store CounterStore
	now   func() time.Time
}

func NewRateLimiter(store CounterStore) *RateLimiter {
	return &RateLimiter{store: store, now: time.Now}
}

// Allow consumes one slot for key in the current window of the given size.
func (r *RateLimiter) Allow(key string, window time.Duration, ceiling int64) (bool, error) {
	windowStart := r.now().UTC().Truncate(window)
	return r.store.CheckAndIncrement(key, windowStart, ceiling)
}

// PGCounterStore keeps counters in the rate_limit_counters table. The upsert
// runs server-side so the read-modify-write is atomic across instances.
type PGCounterStore struct {
	db *gorm.DB
}

func NewPGCounterStore(db *gorm.DB) *PGCounterStore {
	return &PGCounterStore{db: db}
}

func (s *PGCounterStore) CheckAndIncrement(key string, windowStart time.Time, ceiling int64) (bool, error) {
	var count int64
	err := s.db.Raw(`
		INSERT INTO rate_limit_counters (key, window_start, count, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (key, window_start)
		DO UPDATE SET count = rate_limit_counters.count + 1, updated_at = NOW()
		RETURNING count`, key, windowStart).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count <= ceiling, nil
}

// MemoryCounterStore is an in-process CounterStore for tests and local
// development. It enforces nothing across instances or restarts.
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[memoryCounterKey]int64
}

type memoryCounterKey struct {
	key         string
	windowStart int64
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counts: make(map[memoryCounterKey]int64)}
}

func (s *MemoryCounterStore) CheckAndIncrement(key string, windowStart time.Time, ceiling int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memoryCounterKey{key: key, windowStart: windowStart.Unix()}
	s.counts[k]++
	return s.counts[k] <= ceiling, nil
}

// HashOrigin derives a privacy-preserving rate-limit key component from a raw
// network origin. One-way; raw addresses are never stored.
func HashOrigin(secret, origin string) string {
	h := sha256.Sum256([]byte(secret + ":" + origin))
	return base64.RawURLEncoding.EncodeToString(h[:16])
}
