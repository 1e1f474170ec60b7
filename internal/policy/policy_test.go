package policy

import (
	"testing"

	"crm-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func leadIn(tenantID uint, agentID *uint) *model.Lead {
	return &model.Lead{ProfileID: tenantID, AgentID: agentID}
}

func TestOrganizerSeesEveryLeadInTenant(t *testing.T) {
	organizer := NewOrganizer(1, 10)
	someAgent := uint(7)

	assert.True(t, CanSeeLead(organizer, leadIn(10, nil)))
	assert.True(t, CanSeeLead(organizer, leadIn(10, &someAgent)))
}

func TestOrganizerCannotSeeOtherTenants(t *testing.T) {
	organizer := NewOrganizer(1, 10)

	assert.False(t, CanSeeLead(organizer, leadIn(11, nil)))
}

func TestAgentSeesOnlyAssignedLeads(t *testing.T) {
	agent := NewAgent(2, 10, 7)
	self := uint(7)
	other := uint(8)

	assert.True(t, CanSeeLead(agent, leadIn(10, &self)))
	assert.False(t, CanSeeLead(agent, leadIn(10, &other)))
	assert.False(t, CanSeeLead(agent, leadIn(10, nil)))
}

func TestAgentCannotSeeAssignedLeadInOtherTenant(t *testing.T) {
	agent := NewAgent(2, 10, 7)
	self := uint(7)

	// Tenant mismatch wins even when the assignment matches.
	assert.False(t, CanSeeLead(agent, leadIn(11, &self)))
}

func TestCategoryVisibilityIsTenantOnly(t *testing.T) {
	organizer := NewOrganizer(1, 10)
	agent := NewAgent(2, 10, 7)

	own := &model.Category{ProfileID: 10}
	foreign := &model.Category{ProfileID: 11}

	assert.True(t, CanSeeCategory(organizer, own))
	assert.True(t, CanSeeCategory(agent, own))
	assert.False(t, CanSeeCategory(organizer, foreign))
	assert.False(t, CanSeeCategory(agent, foreign))
}

func TestFollowUpVisibilityFollowsLead(t *testing.T) {
	agent := NewAgent(2, 10, 7)
	self := uint(7)

	lead := leadIn(10, &self)
	lead.ID = 42

	assert.True(t, CanSeeFollowUp(agent, &model.FollowUp{LeadID: 42}, lead))
	assert.False(t, CanSeeFollowUp(agent, &model.FollowUp{LeadID: 43}, lead))

	unassigned := leadIn(10, nil)
	unassigned.ID = 44
	assert.False(t, CanSeeFollowUp(agent, &model.FollowUp{LeadID: 44}, unassigned))
}

func TestFromClaimsTagsRole(t *testing.T) {
	organizer := NewOrganizer(1, 10)
	agent := NewAgent(2, 10, 7)

	assert.True(t, organizer.IsOrganizer())
	assert.False(t, agent.IsOrganizer())
	assert.Equal(t, uint(0), organizer.AgentID)
	assert.Equal(t, uint(7), agent.AgentID)
}
