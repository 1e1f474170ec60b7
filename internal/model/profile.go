package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile represents one organization's tenant partition.
// Every lead, category and agent hangs off a profile, and a profile is
// created in the same transaction as its organizer user.
type Profile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	OrgName   string         `json:"org_name" gorm:"type:varchar(100)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
