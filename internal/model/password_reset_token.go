package model

import (
	"time"
)

// PasswordResetToken is a single-use token mailed to a user during the
// three-step password reset flow.
type PasswordResetToken struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Token     string     `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID    uint       `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Valid reports whether the token can still redeem a password reset.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
