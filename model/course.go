package model

import "gorm.io/gorm"

// Course groups enrolled students under an instructor.
type Course struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	InstructorID uint   `json:"instructor_id"`
	Instructor   User   `gorm:"foreignKey:InstructorID" json:"instructor"`
}

// Enrollment joins a user to a course.
type Enrollment struct {
	UserID   uint   `gorm:"primaryKey" json:"user_id"`
	CourseID uint   `gorm:"primaryKey" json:"course_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Course   Course `gorm:"foreignKey:CourseID" json:"course"`
}
