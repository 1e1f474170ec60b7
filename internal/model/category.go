package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a tenant-scoped pipeline stage label.
// Converted marks the terminal stage: moving a lead into a converted
// category stamps the lead's conversion timestamp exactly once.
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(30);not null"`
	ProfileID uint           `json:"profile_id" gorm:"index;not null"`
	Converted bool           `json:"converted" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
