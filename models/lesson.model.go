package models

import (
	"time"

	"gorm.io/gorm"
)

// Lesson content types
const (
	LessonText  = "TEXT"
	LessonVideo = "VIDEO"
	LessonPDF   = "PDF"
)

// Lesson represents a single piece of content within a module
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Module      Module `json:"-" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, PDF
	ContentURL  string `json:"content_url"`                        // required unless TEXT
	Order       int    `json:"order" gorm:"column:display_order;default:1"`
}

// LessonProgress tracks per-user lesson completion; upserted on mark-complete.
type LessonProgress struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint       `json:"lesson_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	Lesson      Lesson     `json:"-" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}
