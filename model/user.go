package model

import "gorm.io/gorm"

// User struct
type User struct {
	gorm.Model
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       string  `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string  `gorm:"not null" json:"display_name"`
	Password    string  `gorm:"not null" json:"password"`
	Role        string  `json:"role"`
	UserType    string  `json:"user_type"` // student or instructor
	ExternalID  *string `gorm:"uniqueIndex" json:"external_id"`

	Otp_enabled bool `gorm:"default:false;"`
	Otp_secret  string
}
