package usecase

import (
	"context"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/policy"
)

// LeadExportRow is the shape of the machine-readable lead dump.
type LeadExportRow struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

// LeadRepository is the persistence contract of the lead lifecycle engine.
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error

	// FindScoped returns the lead only if the actor's access policy admits
	// it; a lead outside the actor's scope behaves as missing.
	FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Lead, error)

	// UpdateLocked loads the scoped lead inside one transaction with the row
	// locked, applies fn, and persists the result when fn returns nil.
	UpdateLocked(ctx context.Context, actor policy.Actor, id uint, fn func(*model.Lead) error) (*model.Lead, error)

	// DeleteWithFollowUps removes the lead and all of its follow-ups in one
	// transaction.
	DeleteWithFollowUps(ctx context.Context, id uint) error

	// ExportAll dumps name and age for every lead in the store, across all
	// tenants. No scoping is applied.
	ExportAll(ctx context.Context) ([]LeadExportRow, error)
}

// CategoryRepository resolves tenant-scoped pipeline stages.
type CategoryRepository interface {
	FindScoped(ctx context.Context, actor policy.Actor, id uint) (*model.Category, error)
}

// AgentRepository resolves agents within a tenant.
type AgentRepository interface {
	FindByTenant(ctx context.Context, tenantID, agentID uint) (*model.Agent, error)
}

// StatsRepository backs the organizer dashboard aggregate.
type StatsRepository interface {
	CountLeads(ctx context.Context, tenantID uint) (int64, error)
	CountLeadsSince(ctx context.Context, tenantID uint, since time.Time) (int64, error)
	CountConvertedSince(ctx context.Context, tenantID uint, since time.Time) (int64, error)
}

// Notifier publishes outbound notifications. Implementations are
// fire-and-forget: a failed publish must never fail the calling operation.
type Notifier interface {
	LeadCreated(ctx context.Context, lead *model.Lead) error
}
