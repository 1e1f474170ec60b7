package repository

import (
	"context"

	"crm-service/internal/model"
	"crm-service/internal/policy"

	"gorm.io/gorm"
)

// CategoryRepository resolves pipeline stages within the actor's tenant.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository wraps the shared gorm handle.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FindScoped returns the category only if it belongs to the actor's tenant.
func (r *CategoryRepository) FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Category, error) {
	var category model.Category
	result := r.db.WithContext(ctx).
		Scopes(policy.CategoryScope(actor)).
		Where("categories.id = ?", id).
		First(&category)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &category, nil
}
