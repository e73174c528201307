package models

import "gorm.io/gorm"

// Module represents a section within a course
type Module struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"index;not null"`
	Course   Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	Title    string `json:"title"`
	Order    int    `json:"order" gorm:"column:display_order;default:1"` // positive, client supplied
}
