package policy

import "crm-service/pkg/jwtutil"

// Role is the closed set of actor roles. An actor is constructed with
// exactly one role; there is no way to represent "both" or "neither".
type Role string

const (
	Organizer Role = "organizer"
	Agent     Role = "agent"
)

// Actor is the authenticated identity every authorization decision is made
// against. TenantID is always set. AgentID is non-zero only for agent actors.
type Actor struct {
	UserID   uint
	TenantID uint
	Role     Role
	AgentID  uint
}

// NewOrganizer builds an organizer actor for the given tenant.
func NewOrganizer(userID, tenantID uint) Actor {
	return Actor{UserID: userID, TenantID: tenantID, Role: Organizer}
}

// NewAgent builds an agent actor for the given tenant and agent record.
func NewAgent(userID, tenantID, agentID uint) Actor {
	return Actor{UserID: userID, TenantID: tenantID, Role: Agent, AgentID: agentID}
}

// FromClaims reconstructs the actor carried in a session token.
func FromClaims(claims *jwtutil.ActorClaims) Actor {
	if claims.Role == string(Agent) {
		return NewAgent(claims.UserID, claims.TenantID, claims.AgentID)
	}
	return NewOrganizer(claims.UserID, claims.TenantID)
}

// IsOrganizer reports whether the actor holds the organizer role.
func (a Actor) IsOrganizer() bool {
	return a.Role == Organizer
}
