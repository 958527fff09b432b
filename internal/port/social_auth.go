package port

import (
	"context"

	"huddl/internal/domain"
)

// SocialAuthClaims is the normalized claim set shared by all providers.
// Subject is the provider's stable user identifier and is always present;
// everything else is best-effort.
type SocialAuthClaims struct {
	Provider      domain.AuthProvider
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// AppleProfile is the request-scoped profile Apple clients send alongside the
// identity token on the user's first authorization only. It is never persisted
// as its own entity; its fields are folded into the account at creation time.
type AppleProfile struct {
	FirstName string
	LastName  string
	Email     string
}

// ApplyAppleProfile folds the one-time profile into the claims. Profile values
// take precedence for names and fill the email if the token omitted it.
func (c *SocialAuthClaims) ApplyAppleProfile(p *AppleProfile) {
	if p == nil {
		return
	}
	if p.FirstName != "" {
		c.GivenName = p.FirstName
	}
	if p.LastName != "" {
		c.FamilyName = p.LastName
	}
	if c.Email == "" && p.Email != "" {
		c.Email = p.Email
	}
}

// SocialTokenVerifier validates a raw signed ID token from one provider and
// returns normalized claims.
type SocialTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*SocialAuthClaims, error)
	Provider() domain.AuthProvider
}
