package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasswordResetTokenValidity(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Minute)

	fresh := PasswordResetToken{ExpiresAt: now.Add(time.Hour)}
	expired := PasswordResetToken{ExpiresAt: now.Add(-time.Minute)}
	redeemed := PasswordResetToken{ExpiresAt: now.Add(time.Hour), UsedAt: &used}

	assert.True(t, fresh.Valid(now))
	assert.False(t, expired.Valid(now))
	assert.False(t, redeemed.Valid(now))
}
