package models

import "time"

// RateLimitCounter is a fixed-window counter shared by all server instances.
// The (key, window_start) pair is unique; increments happen in a single
// INSERT .. ON CONFLICT round-trip so two instances can never both take the
// last slot. Rows for past windows are pruned by the cleanup goroutine.
type RateLimitCounter struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"size:128;not null;uniqueIndex:ux_rate_limit_key_window,priority:1" json:"key"`
	WindowStart time.Time `gorm:"not null;uniqueIndex:ux_rate_limit_key_window,priority:2;index" json:"window_start"`
	Count       int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RateLimitCounter) TableName() string { return "rate_limit_counters" }
