package usecase

import (
	"context"
	"strings"
	"time"

	"crm-service/internal/model"
	"crm-service/internal/policy"
	"crm-service/prometheus"

	"go.uber.org/zap"
)

// LeadLifecycle is the engine behind every state change a lead goes
// through: creation, agent assignment, category transitions and deletion.
type LeadLifecycle struct {
	leads      LeadRepository
	categories CategoryRepository
	agents     AgentRepository
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

// NewLeadLifecycle wires the engine with its collaborators.
func NewLeadLifecycle(leads LeadRepository, categories CategoryRepository, agents AgentRepository, notifier Notifier, log *zap.Logger) *LeadLifecycle {
	return &LeadLifecycle{
		leads:      leads,
		categories: categories,
		agents:     agents,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// CreateLeadInput carries the organizer-supplied fields of a new lead.
type CreateLeadInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Age         int    `json:"age"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
}

// Create stores a new unassigned, uncategorized lead in the organizer's
// tenant and publishes a creation notification. Notification failures are
// logged and swallowed; the create itself has already succeeded.
func (uc *LeadLifecycle) Create(ctx context.Context, actor policy.Actor, input CreateLeadInput) (*model.Lead, error) {
	if !actor.IsOrganizer() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, ErrValidation
	}

	lead := &model.Lead{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Age:         input.Age,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Description: input.Description,
		ProfileID:   actor.TenantID,
	}

	if err := uc.leads.Create(ctx, lead); err != nil {
		return nil, err
	}

	if err := uc.notifier.LeadCreated(ctx, lead); err != nil {
		uc.log.Warn("Lead creation notification failed",
			zap.Uint("lead_id", lead.ID),
			zap.Error(err))
	}

	return lead, nil
}

// AssignAgent hands the lead to an agent of the same tenant. There is no
// assignment history: the previous agent, if any, is simply replaced.
func (uc *LeadLifecycle) AssignAgent(ctx context.Context, actor policy.Actor, leadID, agentID uint) (*model.Lead, error) {
	if !actor.IsOrganizer() {
		return nil, ErrForbidden
	}

	// Resolving the agent through the actor's tenant rejects cross-tenant
	// assignment the same way a missing agent is rejected.
	agent, err := uc.agents.FindByTenant(ctx, actor.TenantID, agentID)
	if err != nil {
		return nil, err
	}

	return uc.leads.UpdateLocked(ctx, actor, leadID, func(lead *model.Lead) error {
		lead.AgentID = &agent.ID
		return nil
	})
}

// UpdateCategory moves the lead into another pipeline stage. Allowed for the
// organizer and for the lead's assigned agent (the repository scope enforces
// that). Entering a converted stage stamps ConvertedAt exactly once; the
// stamp is never cleared or overwritten, including when the lead later moves
// out of and back into a converted stage.
func (uc *LeadLifecycle) UpdateCategory(ctx context.Context, actor policy.Actor, leadID, categoryID uint) (*model.Lead, error) {
	category, err := uc.categories.FindScoped(ctx, actor, categoryID)
	if err != nil {
		return nil, err
	}

	var stamped bool
	lead, err := uc.leads.UpdateLocked(ctx, actor, leadID, func(lead *model.Lead) error {
		stamped = applyTransition(lead, category, uc.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stamped {
		prometheus.ConversionCounter.Inc()
		uc.log.Info("Lead converted",
			zap.Uint("lead_id", lead.ID),
			zap.Uint("tenant_id", lead.ProfileID))
	}

	return lead, nil
}

// Delete removes the lead and its follow-up history.
func (uc *LeadLifecycle) Delete(ctx context.Context, actor policy.Actor, leadID uint) error {
	if !actor.IsOrganizer() {
		return ErrForbidden
	}

	lead, err := uc.leads.FindScoped(ctx, actor, leadID)
	if err != nil {
		return err
	}

	return uc.leads.DeleteWithFollowUps(ctx, lead.ID)
}

// ExportAll returns the global lead dump consumed by /leads/json.
func (uc *LeadLifecycle) ExportAll(ctx context.Context) ([]LeadExportRow, error) {
	return uc.leads.ExportAll(ctx)
}

// applyTransition is the one-way conversion stamp rule. It runs while the
// lead row is locked, so concurrent transitions cannot both observe a nil
// ConvertedAt. It reports whether this transition set the stamp.
func applyTransition(lead *model.Lead, category *model.Category, now time.Time) bool {
	lead.CategoryID = &category.ID
	if category.Converted && lead.ConvertedAt == nil {
		stamp := now
		lead.ConvertedAt = &stamp
		return true
	}
	return false
}
