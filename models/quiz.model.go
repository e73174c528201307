package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz holds an ordered question set attached to a module
type Quiz struct {
	gorm.Model
	CourseID  uint       `json:"course_id" gorm:"index;not null"`
	ModuleID  uint       `json:"module_id" gorm:"index;not null"`
	Module    Module     `json:"-" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Question is a single multiple-choice prompt; Options is a JSON array of
// option strings and CorrectOption indexes into it.
type Question struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Prompt        string         `json:"prompt"`
	Options       datatypes.JSON `json:"options"`
	CorrectOption int            `json:"-"` // never serialized to students
	Order         int            `json:"order" gorm:"column:display_order;default:1"`
}

// QuizAttempt records one graded submission; multiple attempts per user are
// allowed, no dedup.
type QuizAttempt struct {
	gorm.Model
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	User        User           `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	QuizID      uint           `json:"quiz_id" gorm:"index;not null"`
	Answers     datatypes.JSON `json:"answers"` // raw submitted answers
	Score       int            `json:"score"`
	Total       int            `json:"total"`
	AttemptedAt time.Time      `json:"attempted_at"`
}
