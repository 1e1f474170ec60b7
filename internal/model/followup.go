package model

import (
	"time"

	"gorm.io/gorm"
)

// FollowUp is a note appended to a lead's history, optionally with an
// uploaded attachment. Follow-ups are removed together with their lead.
type FollowUp struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	LeadID     uint           `json:"lead_id" gorm:"index;not null"`
	Notes      string         `json:"notes" gorm:"type:text"`
	Attachment string         `json:"attachment,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
