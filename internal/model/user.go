package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user account can hold. Every user is exactly one of these.
const (
	RoleOrganizer = "organizer"
	RoleAgent     = "agent"
)

// User represents the user model stored in the database
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	FirstName string         `json:"first_name" gorm:"type:varchar(50)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(50)"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:'organizer'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
