package port_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"huddl/internal/domain"
	"huddl/internal/port"
)

func TestApplyAppleProfile_NilProfileIsNoop(t *testing.T) {
	claims := port.SocialAuthClaims{
		Provider: domain.AuthProviderApple,
		Subject:  "s1",
		Email:    "token@privaterelay.appleid.com",
	}

	claims.ApplyAppleProfile(nil)

	assert.Equal(t, "token@privaterelay.appleid.com", claims.Email)
	assert.Empty(t, claims.GivenName)
}

func TestApplyAppleProfile_NameTakesPrecedence(t *testing.T) {
	claims := port.SocialAuthClaims{
		Provider:   domain.AuthProviderApple,
		Subject:    "s1",
		GivenName:  "Token",
		FamilyName: "Name",
	}

	claims.ApplyAppleProfile(&port.AppleProfile{FirstName: "Grace", LastName: "Hopper"})

	assert.Equal(t, "Grace", claims.GivenName)
	assert.Equal(t, "Hopper", claims.FamilyName)
}

func TestApplyAppleProfile_EmailOnlyFillsGap(t *testing.T) {
	claims := port.SocialAuthClaims{Provider: domain.AuthProviderApple, Subject: "s1"}
	claims.ApplyAppleProfile(&port.AppleProfile{Email: "grace@example.com"})
	assert.Equal(t, "grace@example.com", claims.Email)

	claims = port.SocialAuthClaims{
		Provider: domain.AuthProviderApple,
		Subject:  "s1",
		Email:    "token@privaterelay.appleid.com",
	}
	claims.ApplyAppleProfile(&port.AppleProfile{Email: "grace@example.com"})
	assert.Equal(t, "token@privaterelay.appleid.com", claims.Email)
}
