package jwtutil

import (
	"testing"

	"crm-service/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("org@example.com", 1, "organizer", 10, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "org@example.com", claims.Email)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "organizer", claims.Role)
	assert.Equal(t, uint(10), claims.TenantID)
	assert.Equal(t, uint(0), claims.AgentID)
}

func TestAgentTokenCarriesAgentID(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("agent@example.com", 2, "agent", 10, 7)
	assert.NoError(t, err)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, uint(7), claims.AgentID)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("org@example.com", 1, "organizer", 10, 0)
	assert.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "another-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
