package model

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a prospective customer tracked through the pipeline.
// AgentID and CategoryID are optional: a freshly created lead is unassigned
// and uncategorized. ConvertedAt is written at most once, when the lead first
// moves into a converted category.
type Lead struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	FirstName      string         `json:"first_name" gorm:"type:varchar(20);not null"`
	LastName       string         `json:"last_name" gorm:"type:varchar(20);not null"`
	Age            int            `json:"age" gorm:"default:0"`
	Email          string         `json:"email" gorm:"type:varchar(100)"`
	PhoneNumber    string         `json:"phone_number" gorm:"type:varchar(20)"`
	Description    string         `json:"description" gorm:"type:text"`
	ProfilePicture string         `json:"profile_picture,omitempty" gorm:"type:varchar(255)"`
	ProfileID      uint           `json:"profile_id" gorm:"index;not null"`
	AgentID        *uint          `json:"agent_id,omitempty" gorm:"index"`
	CategoryID     *uint          `json:"category_id,omitempty" gorm:"index"`
	ConvertedAt    *time.Time     `json:"converted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Agent     *Agent     `json:"agent,omitempty" gorm:"foreignKey:AgentID"`
	Category  *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	FollowUps []FollowUp `json:"followups,omitempty" gorm:"foreignKey:LeadID"`
}
