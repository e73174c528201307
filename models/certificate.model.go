package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is the proof-of-completion artifact, created lazily and at most
// once per enrollment. The unique index on EnrollmentID is the authority for
// "exactly one certificate per enrollment"; the rendered PDF file is a derived
// cache regenerated from this row when missing.
type Certificate struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	Enrollment   Enrollment `json:"-" gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE"`
	SerialNumber string     `json:"serial_number" gorm:"unique;not null"`
	IssuedAt     time.Time  `json:"issued_at"`
}
