// Package apple verifies Sign in with Apple identity tokens.
package apple

import (
	"context"

	"huddl/internal/auth/idtoken"
	"huddl/internal/auth/jwks"
	"huddl/internal/domain"
	"huddl/internal/port"
)

// JWKSURL is Apple's published signing-key endpoint.
const JWKSURL = "https://appleid.apple.com/auth/keys"

const issuer = "https://appleid.apple.com"

// Verifier validates Apple identity tokens against the cached Apple key set.
// Apple tokens carry no name claims; the client-supplied one-time profile is
// folded in later by the orchestrator.
type Verifier struct {
	inner *idtoken.Verifier
}

// NewVerifier creates an Apple identity token verifier for the given
// Services ID / app bundle ID.
func NewVerifier(clientID string, keys *jwks.Cache) *Verifier {
	return &Verifier{inner: idtoken.NewVerifier(keys, clientID, issuer)}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*port.SocialAuthClaims, error) {
	claims, err := v.inner.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	// Private-relay addresses are opaque valid emails, not a missing-email
	// condition; they pass through unchanged.
	return &port.SocialAuthClaims{
		Provider:      domain.AuthProviderApple,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
	}, nil
}

func (v *Verifier) Provider() domain.AuthProvider {
	return domain.AuthProviderApple
}

// Compile-time check.
var _ port.SocialTokenVerifier = (*Verifier)(nil)
