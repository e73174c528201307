package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"default:''"`
	Email      string `json:"email" gorm:"unique;not null"`
	Password   string `json:"-" gorm:"not null"`
	Role       string `json:"role" gorm:"default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	AvatarURL  string `json:"avatar_url" gorm:"default:''"`
	IsVerified bool   `json:"is_verified" gorm:"default:false"`

	// Single active session: exactly one refresh token per user, replaced on
	// every rotation.
	RefreshToken string `json:"-" gorm:"default:''"`

	// One-time tokens are stored as SHA-256 digests, never plaintext.
	VerificationToken  string     `json:"-" gorm:"index;default:''"`
	VerificationExpiry *time.Time `json:"-"`
	ResetToken         string     `json:"-" gorm:"index;default:''"`
	ResetExpiry        *time.Time `json:"-"`
}

// IsStaff reports whether the user may own or manage courses.
func (u *User) IsStaff() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}
