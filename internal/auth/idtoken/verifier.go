// Package idtoken verifies provider-issued OIDC ID tokens against a cached
// key set. Google and Apple verification are both thin wrappers over this
// package; they differ only in issuer, key endpoint, and claim shape.
package idtoken

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"huddl/internal/auth/jwks"
	"huddl/internal/domain"
)

// Claims holds the subset of ID-token claims the auth flow consumes.
// Subject is guaranteed non-empty on a successful Verify.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
	Name          string
}

// Verifier validates raw ID tokens for one provider. Checks run in a fixed
// order and short-circuit on the first failure: structure, key lookup,
// signature, issuer, audience, expiry, required claims.
type Verifier struct {
	keys     *jwks.Cache
	audience string
	issuers  []string
	now      func() time.Time
}

// NewVerifier builds a verifier that accepts tokens for audience signed by a
// key from keys and issued by any of issuers.
func NewVerifier(keys *jwks.Cache, audience string, issuers ...string) *Verifier {
	return &Verifier{
		keys:     keys,
		audience: audience,
		issuers:  issuers,
		now:      time.Now,
	}
}

type tokenClaims struct {
	Email         string     `json:"email,omitempty"`
	EmailVerified boolString `json:"email_verified,omitempty"`
	GivenName     string     `json:"given_name,omitempty"`
	FamilyName    string     `json:"family_name,omitempty"`
	Name          string     `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verify runs the full check sequence on a raw token. Verification failures
// map onto the domain error taxonomy; they are terminal for the request and
// never retried here.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &tokenClaims{}

	// Claims validation (exp, iss, aud) is done by hand below so each
	// failure maps to its own error kind.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, domain.ErrUnknownKey
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, domain.ErrBadSignature
	}

	if !v.issuedByExpected(claims.Issuer) {
		return nil, domain.ErrBadIssuer
	}

	if !audienceContains(claims.Audience, v.audience) {
		return nil, domain.ErrBadAudience
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(v.now()) {
		return nil, domain.ErrTokenExpired
	}

	if claims.Subject == "" {
		return nil, domain.ErrMissingClaim
	}

	return &Claims{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		GivenName:     claims.GivenName,
		FamilyName:    claims.FamilyName,
		Name:          claims.Name,
	}, nil
}

func (v *Verifier) issuedByExpected(issuer string) bool {
	for _, iss := range v.issuers {
		if issuer == iss {
			return true
		}
	}
	return false
}

func audienceContains(aud jwt.ClaimStrings, target string) bool {
	for _, value := range aud {
		if value == target {
			return true
		}
	}
	return false
}

// classifyParseError maps golang-jwt parse failures onto the domain taxonomy.
// Key-cache sentinels pass through untouched so transient fetch failures stay
// distinguishable from definitive rejections.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, domain.ErrKeyFetchFailed):
		return domain.ErrKeyFetchFailed
	case errors.Is(err, domain.ErrUnknownKey):
		return domain.ErrUnknownKey
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrBadSignature
	default:
		return domain.ErrTokenMalformed
	}
}

// boolString decodes email_verified, which Google sends as a JSON bool and
// Apple sometimes sends as the string "true".
type boolString bool

func (b *boolString) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*b = false
		return nil
	}
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		*b = false
		return nil
	}
	*b = boolString(parsed)
	return nil
}
