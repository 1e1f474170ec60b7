package repository

import (
	"context"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

// AgentRepository resolves agents within a tenant.
type AgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository wraps the shared gorm handle.
func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// FindByTenant returns the agent only if it belongs to the given tenant, so
// a cross-tenant lookup fails the same way a missing agent does.
func (r *AgentRepository) FindByTenant(ctx context.Context, tenantID, agentID uint) (*model.Agent, error) {
	var agent model.Agent
	result := r.db.WithContext(ctx).
		Where("profile_id = ? AND id = ?", tenantID, agentID).
		First(&agent)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return &agent, nil
}
