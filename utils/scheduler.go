package utils

import (
	"eduflow/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Pending-payment enrollments older than this are abandoned checkouts.
const stalePendingAge = 24 * time.Hour

// InitializeMaintenanceScheduler sets up the daily cleanup jobs and returns
// the running cron so main can stop it on shutdown.
func InitializeMaintenanceScheduler(db *gorm.DB) *cron.Cron {
	log.Println("[SCHEDULER] Initializing maintenance scheduler...")

	c := cron.New()

	// Run daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		PurgeExpiredTokens(db)
		PurgeStalePendingEnrollments(db)
	})

	c.Start()
	log.Println("[SCHEDULER] Maintenance scheduler started - runs daily at 3 AM")
	return c
}

// PurgeExpiredTokens clears verification and reset token digests whose expiry
// has passed, so stale digests can't linger indefinitely.
func PurgeExpiredTokens(db *gorm.DB) {
	now := time.Now()

	result := db.Model(&models.User{}).
		Where("verification_token <> '' AND verification_expiry < ?", now).
		Updates(map[string]interface{}{"verification_token": "", "verification_expiry": nil})
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error purging verification tokens: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Cleared %d expired verification tokens", result.RowsAffected)
	}

	result = db.Model(&models.User{}).
		Where("reset_token <> '' AND reset_expiry < ?", now).
		Updates(map[string]interface{}{"reset_token": "", "reset_expiry": nil})
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error purging reset tokens: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Cleared %d expired reset tokens", result.RowsAffected)
	}
}

// PurgeStalePendingEnrollments deletes pending-payment enrollments whose
// checkout was never completed, freeing the user/course slot to enroll again.
func PurgeStalePendingEnrollments(db *gorm.DB) {
	cutoff := time.Now().Add(-stalePendingAge)

	result := db.Unscoped().
		Where("payment_status = ? AND created_at < ?", models.PaymentPending, cutoff).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error purging stale pending enrollments: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Removed %d stale pending enrollments", result.RowsAffected)
	}
}
