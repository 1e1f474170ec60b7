package model

import (
	"time"

	"gorm.io/gorm"
)

// Agent links an agent-role user to the tenant it works for.
// The user account and the agent row are provisioned together by an organizer.
type Agent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	ProfileID uint           `json:"profile_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}
