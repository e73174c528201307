package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment payment states
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Enrollment is the join entity between a user and a course, carrying both
// access and payment state. The composite unique index is what guarantees
// at most one row per user/course pair under concurrent enroll calls.
type Enrollment struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	User       User      `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CourseID   uint      `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	Course     Course    `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	EnrolledAt time.Time `json:"enrolled_at"`

	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`

	PaymentStatus string `json:"payment_status" gorm:"default:'PENDING'"` // PENDING, PAID
	// Gateway order id, the correlation key for payment confirmation. Nullable
	// so free enrollments don't collide on the unique index.
	PaymentOrderID *string    `json:"payment_order_id" gorm:"type:varchar(100);uniqueIndex"`
	PaymentID      string     `json:"payment_id" gorm:"type:varchar(100)"`
	Amount         uint       `json:"amount" gorm:"default:0"` // in paise
	PaidAt         *time.Time `json:"paid_at"`
}

// IsEnrolled reports whether a user has an enrollment row for the course.
// Access checks re-derive this per call instead of caching it.
func IsEnrolled(db *gorm.DB, userID, courseID uint) bool {
	var count int64
	db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count)
	return count > 0
}
