package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddl/internal/config"
	"huddl/internal/domain"
	"huddl/internal/service"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "unit-test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "huddl",
	}
}

func TestGenerateTokenPairForUser(t *testing.T) {
	svc := service.NewTokenService(testJWTConfig())
	user := &domain.User{
		ID:    uuid.New(),
		Email: "a@x.com",
		Role:  domain.RoleMember,
	}

	pair, err := svc.GenerateTokenPairForUser(user)

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleMember, claims.Role)
	assert.Equal(t, "huddl", claims.Issuer)
}

func TestValidateToken_RejectsRefreshTokenAsAccess(t *testing.T) {
	svc := service.NewTokenService(testJWTConfig())
	user := &domain.User{ID: uuid.New(), Role: domain.RoleMember}

	pair, err := svc.GenerateTokenPairForUser(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateToken_RejectsTamperedToken(t *testing.T) {
	svc := service.NewTokenService(testJWTConfig())
	user := &domain.User{ID: uuid.New(), Role: domain.RoleMember}

	pair, err := svc.GenerateTokenPairForUser(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken + "x")
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	issuer := service.NewTokenService(testJWTConfig())
	other := service.NewTokenService(config.JWTConfig{
		Secret:             "different-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "huddl",
	})
	user := &domain.User{ID: uuid.New(), Role: domain.RoleMember}

	pair, err := issuer.GenerateTokenPairForUser(user)
	require.NoError(t, err)

	_, err = other.ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}
