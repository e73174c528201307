package models

import "gorm.io/gorm"

// Course types
const (
	CourseFree = "FREE"
	CoursePaid = "PAID"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedByID uint   `json:"created_by_id" gorm:"index;not null"`
	CreatedBy   User   `json:"-" gorm:"foreignKey:CreatedByID"`
	Type        string `json:"type" gorm:"default:'FREE'"` // FREE, PAID
	Price       uint   `json:"price" gorm:"default:0"`     // in rupees, > 0 iff PAID
	IsPublished bool   `json:"is_published" gorm:"default:false"`

	// Co-instructors in addition to the creator
	Instructors []User `json:"instructors,omitempty" gorm:"many2many:course_instructors;"`
}

// IsInstructor reports whether userID created the course or is a co-instructor.
// Instructors must be preloaded for the co-instructor check to apply.
func (course *Course) IsInstructor(userID uint) bool {
	if course.CreatedByID == userID {
		return true
	}
	for _, in := range course.Instructors {
		if in.ID == userID {
			return true
		}
	}
	return false
}
