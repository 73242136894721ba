package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/storefront-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than 30
// days and rate-limit counter rows whose window closed more than a day ago.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logCutoff := time.Now().AddDate(0, 0, -30)
				result := db.Where("timestamp < ?", logCutoff).Delete(&models.SystemLog{})
				if result.Error != nil {
					slog.Error("log cleanup failed", "error", result.Error)
				} else if result.RowsAffected > 0 {
					slog.Info("log cleanup completed", "deleted", result.RowsAffected)
				}

				counterCutoff := time.Now().Add(-24 * time.Hour)
				result = db.Where("window_start < ?", counterCutoff).Delete(&models.RateLimitCounter{})
				if result.Error != nil {
					slog.Error("rate limit counter cleanup failed", "error", result.Error)
				} else if result.RowsAffected > 0 {
					slog.Info("rate limit counter cleanup completed", "deleted", result.RowsAffected)
				}
			case <-done:
				return
			}
		}
	}()
}
