package policy

import (
	"crm-service/internal/model"

	"gorm.io/gorm"
)

// The access policy is the sole authorization gate for tenant data.
// Organizers see everything inside their tenant; agents see only the leads
// assigned to them (and the follow-ups of those leads). Categories are
// visible to both roles within the tenant. The same rules exist twice: as
// pure predicates over loaded records and as gorm scopes applied to queries.
// Both forms must stay in agreement.

// CanSeeLead reports whether the actor may read or act on the lead.
func CanSeeLead(a Actor, lead *model.Lead) bool {
	if lead.ProfileID != a.TenantID {
		return false
	}
	switch a.Role {
	case Organizer:
		return true
	case Agent:
		return lead.AgentID != nil && *lead.AgentID == a.AgentID
	}
	return false
}

// CanSeeCategory reports whether the actor may read the category.
func CanSeeCategory(a Actor, category *model.Category) bool {
	return category.ProfileID == a.TenantID
}

// CanSeeFollowUp reports whether the actor may read or act on a follow-up,
// given the lead it belongs to. Follow-up visibility is lead visibility.
func CanSeeFollowUp(a Actor, followUp *model.FollowUp, lead *model.Lead) bool {
	return followUp.LeadID == lead.ID && CanSeeLead(a, lead)
}

// LeadScope filters a leads query down to what the actor may see.
func LeadScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch a.Role {
		case Agent:
			return db.Where("leads.profile_id = ? AND leads.agent_id = ?", a.TenantID, a.AgentID)
		default:
			return db.Where("leads.profile_id = ?", a.TenantID)
		}
	}
}

// CategoryScope filters a categories query down to the actor's tenant.
func CategoryScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("categories.profile_id = ?", a.TenantID)
	}
}

// FollowUpScope filters a follow-ups query through the visibility of the
// owning lead.
func FollowUpScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		joined := db.Joins("JOIN leads ON leads.id = follow_ups.lead_id")
		switch a.Role {
		case Agent:
			return joined.Where("leads.profile_id = ? AND leads.agent_id = ?", a.TenantID, a.AgentID)
		default:
			return joined.Where("leads.profile_id = ?", a.TenantID)
		}
	}
}

// AgentScope filters an agents query down to the actor's tenant.
func AgentScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("agents.profile_id = ?", a.TenantID)
	}
}
