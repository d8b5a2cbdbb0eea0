package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anand95733/clothify-backend/internal/config"
)

func jwtTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.JWT.AccessTokenExpiry = 15 * time.Minute
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return cfg
}

func TestJWTManager_AccessToken(t *testing.T) {
	m := NewJWTManager(jwtTestConfig())

	token, err := m.GenerateAccessToken(42, "ada@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
}

func TestJWTManager_TokenTypeEnforced(t *testing.T) {
	m := NewJWTManager(jwtTestConfig())

	access, err := m.GenerateAccessToken(42, "ada@example.com")
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(42, "ada@example.com")
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	m := NewJWTManager(jwtTestConfig())

	otherCfg := jwtTestConfig()
	otherCfg.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	other := NewJWTManager(otherCfg)

	token, err := other.GenerateAccessToken(42, "ada@example.com")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
}
