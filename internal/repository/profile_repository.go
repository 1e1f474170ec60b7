package repository

import (
	"context"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

// ProfileRepository resolves tenant-level lookups.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository wraps the shared gorm handle.
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// OwnerEmail returns the email address of the tenant's organizer.
func (r *ProfileRepository) OwnerEmail(ctx context.Context, tenantID uint) (string, error) {
	var email string
	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Select("users.email").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.id = ?", tenantID).
		Scan(&email)
	if result.Error != nil {
		return "", translate(result.Error)
	}
	if email == "" {
		return "", translate(gorm.ErrRecordNotFound)
	}
	return email, nil
}
