package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadCreatedMessagePayload(t *testing.T) {
	msg := Message{
		Kind:     KindLeadCreated,
		TenantID: 10,
		LeadID:   42,
		LeadName: "Ana Reis",
	}

	raw, err := json.Marshal(msg)
	assert.NoError(t, err)

	var decoded Message
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, KindLeadCreated, decoded.Kind)
	assert.Equal(t, uint(10), decoded.TenantID)
	assert.Equal(t, uint(42), decoded.LeadID)
	assert.Empty(t, decoded.To)
}

func TestOptionalFieldsAreOmitted(t *testing.T) {
	raw, err := json.Marshal(Message{Kind: KindPasswordReset, To: "a@b.c", Token: "tok"})
	assert.NoError(t, err)

	// Lead fields stay off the wire for non-lead messages.
	assert.NotContains(t, string(raw), "lead_id")
	assert.NotContains(t, string(raw), "tenant_id")
	assert.Contains(t, string(raw), `"token":"tok"`)
}
