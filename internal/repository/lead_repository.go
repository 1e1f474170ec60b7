package repository

import (
	"context"
	"errors"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/policy"
	"crm-service/internal/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadRepository is the gorm-backed implementation of the lead lifecycle
// engine's persistence contract.
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository wraps the shared gorm handle.
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// FindScoped returns the lead only if the actor's access policy admits it.
func (r *LeadRepository) FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Lead, error) {
	var lead model.Lead
	result := r.db.WithContext(ctx).
		Scopes(policy.LeadScope(actor)).
		Where("leads.id = ?", id).
		First(&lead)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &lead, nil
}

// UpdateLocked applies fn to the scoped lead while the row is locked, then
// persists the result. The lock makes read-modify-write sequences such as
// the conversion stamp behave as a single conditional update.
func (r *LeadRepository) UpdateLocked(ctx context.Context, actor policy.Actor, id uint, fn func(*model.Lead) error) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(policy.LeadScope(actor)).
			Where("leads.id = ?", id).
			First(&lead)
		if result.Error != nil {
			return translate(result.Error)
		}

		if err := fn(&lead); err != nil {
			return err
		}

		return tx.Save(&lead).Error
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// DeleteWithFollowUps removes the lead together with its follow-up history.
func (r *LeadRepository) DeleteWithFollowUps(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&model.FollowUp{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Lead{}, id).Error
	})
}

// ExportAll dumps every lead's name and age across all tenants.
func (r *LeadRepository) ExportAll(ctx context.Context) ([]usecase.LeadExportRow, error) {
	var rows []usecase.LeadExportRow
	result := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Select("first_name", "last_name", "age").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// CountLeads returns the tenant's total lead count.
func (r *LeadRepository) CountLeads(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("profile_id = ?", tenantID).
		Count(&count)
	return count, result.Error
}

// CountLeadsSince counts the tenant's leads created after the cutoff.
func (r *LeadRepository) CountLeadsSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("profile_id = ? AND created_at >= ?", tenantID, since).
		Count(&count)
	return count, result.Error
}

// CountConvertedSince counts the tenant's leads converted after the cutoff.
func (r *LeadRepository) CountConvertedSince(ctx context.Context, tenantID uint, since time.Time) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("profile_id = ? AND converted_at >= ?", tenantID, since).
		Count(&count)
	return count, result.Error
}

// translate maps gorm's missing-record error onto the usecase taxonomy.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrNotFound
	}
	return err
}
