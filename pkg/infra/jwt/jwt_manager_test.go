package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClearVault/MediaGuard/pkg/config"
)

func TestJwtManager_RoundTrip(t *testing.T) {
	manager := NewJwtManager(&config.ServerConfig{SecretKey: "secret"})

	token, err := manager.CreateToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, manager.ValidateToken(token))
}

func TestJwtManager_ValidateToken_Invalid(t *testing.T) {
	manager := NewJwtManager(&config.ServerConfig{SecretKey: "secret"})

	assert.ErrorIs(t, manager.ValidateToken("not.a.token"), ErrInvalidToken)

	other := NewJwtManager(&config.ServerConfig{SecretKey: "different"})
	token, err := other.CreateToken()
	require.NoError(t, err)
	assert.ErrorIs(t, manager.ValidateToken(token), ErrInvalidToken)
}
