package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")

	// Token verification failures. Terminal for the request: the client must
	// obtain a fresh token from the provider and resubmit.
	ErrTokenMalformed = errors.New("token is malformed")
	ErrUnknownKey     = errors.New("token signed with unknown key")
	ErrBadSignature   = errors.New("token signature is invalid")
	ErrBadIssuer      = errors.New("token issuer mismatch")
	ErrBadAudience    = errors.New("token audience mismatch")
	ErrTokenExpired   = errors.New("token is expired")
	ErrMissingClaim   = errors.New("token is missing a required claim")

	// ErrKeyFetchFailed means the provider's JWKS endpoint could not be
	// reached or returned garbage. Retryable by the client.
	ErrKeyFetchFailed = errors.New("fetching provider signing keys failed")

	// ErrDuplicateIdentity signals a lost creation race on (provider, subject).
	// Recovered internally by the resolver; never surfaced to callers.
	ErrDuplicateIdentity = errors.New("identity already linked to a user")

	ErrUnsupportedProvider = errors.New("unsupported social auth provider")
)

// IsVerificationError reports whether err is a definitive token verification
// failure, as opposed to a transient infrastructure error.
func IsVerificationError(err error) bool {
	for _, target := range []error{
		ErrTokenMalformed,
		ErrUnknownKey,
		ErrBadSignature,
		ErrBadIssuer,
		ErrBadAudience,
		ErrTokenExpired,
		ErrMissingClaim,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
