package notify

// Message kinds carried on the notification queue.
const (
	KindLeadCreated     = "lead_created"
	KindAgentInvitation = "agent_invitation"
	KindPasswordReset   = "password_reset"
)

// Message is the wire payload of an outbound notification. To is empty for
// lead-created messages; the worker resolves the organizer's address from
// the tenant.
type Message struct {
	Kind      string `json:"kind"`
	To        string `json:"to,omitempty"`
	TenantID  uint   `json:"tenant_id,omitempty"`
	LeadID    uint   `json:"lead_id,omitempty"`
	LeadName  string `json:"lead_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Token     string `json:"token,omitempty"`
}
