package service

import (
	"context"
	"testing"

	"derma-detect/backend/common"
	"derma-detect/backend/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	common.JWTSecret = "test-secret"
	common.JWTRefreshSecret = "test-refresh-secret"
	common.RedisEnabled = false
}

func testUser() *model.User {
	u := &model.User{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Role:        model.RoleCommonUser,
		Status:      model.UserStatusEnabled,
	}
	u.ID = 42
	return u
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, model.RoleCommonUser, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestRefreshTokenUsesSeparateSecret(t *testing.T) {
	refresh, err := GenerateRefreshToken(testUser())
	require.NoError(t, err)

	// A refresh token must not pass as an access token.
	_, err = ValidateToken(refresh)
	assert.Error(t, err)

	claims, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestBlacklistDisabledWithoutRedis(t *testing.T) {
	token, err := GenerateToken(testUser())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, BlacklistToken(ctx, token))
	assert.False(t, IsTokenBlacklisted(ctx, token))
}
