// Package google verifies Google Sign-In ID tokens.
package google

import (
	"context"
	"strings"

	"huddl/internal/auth/idtoken"
	"huddl/internal/auth/jwks"
	"huddl/internal/domain"
	"huddl/internal/port"
)

// JWKSURL is Google's published signing-key endpoint.
const JWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Google issues tokens under both issuer spellings.
var issuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Verifier validates Google ID tokens against the cached Google key set.
type Verifier struct {
	inner *idtoken.Verifier
}

// NewVerifier creates a Google ID token verifier for the given OAuth client ID.
func NewVerifier(clientID string, keys *jwks.Cache) *Verifier {
	return &Verifier{inner: idtoken.NewVerifier(keys, clientID, issuers...)}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*port.SocialAuthClaims, error) {
	claims, err := v.inner.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	given, family := claims.GivenName, claims.FamilyName
	if given == "" && family == "" && claims.Name != "" {
		given, family = splitName(claims.Name)
	}

	return &port.SocialAuthClaims{
		Provider:      domain.AuthProviderGoogle,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		GivenName:     given,
		FamilyName:    family,
	}, nil
}

func (v *Verifier) Provider() domain.AuthProvider {
	return domain.AuthProviderGoogle
}

// splitName breaks a display name on the first space.
func splitName(name string) (given, family string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	given = parts[0]
	if len(parts) == 2 {
		family = parts[1]
	}
	return given, family
}

// Compile-time check.
var _ port.SocialTokenVerifier = (*Verifier)(nil)
