package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadCreatedBody(t *testing.T) {
	body, err := render(leadCreatedTmpl, map[string]string{"LeadName": "Ana Reis"})
	assert.NoError(t, err)
	assert.Contains(t, body, "Ana Reis")
	assert.Contains(t, body, "assign it to an agent")
}

func TestAgentInvitationBody(t *testing.T) {
	body, err := render(agentInvitationTmpl, map[string]string{"FirstName": "João"})
	assert.NoError(t, err)
	assert.Contains(t, body, "Hi João")
	assert.Contains(t, body, "reset it before you start working")
}

func TestPasswordResetBody(t *testing.T) {
	body, err := render(passwordResetTmpl, map[string]string{"Token": "tok-123"})
	assert.NoError(t, err)
	assert.Contains(t, body, "tok-123")
}
