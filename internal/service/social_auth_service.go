package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"huddl/internal/domain"
	"huddl/internal/port"
)

// SocialSignInInput is the DTO for a social sign-in request. Profile is the
// Apple one-time user object; it is nil for Google and for every Apple login
// after the first authorization.
type SocialSignInInput struct {
	Provider domain.AuthProvider
	RawToken string
	Profile  *port.AppleProfile
}

// SocialSignInOutput contains the result of a social sign-in.
type SocialSignInOutput struct {
	User      *domain.User
	Tokens    *TokenPair
	IsNewUser bool
}

// SocialAuthService verifies provider tokens and resolves them to a local
// account, creating one on first use.
type SocialAuthService interface {
	SignIn(ctx context.Context, input SocialSignInInput) (*SocialSignInOutput, error)
}

type socialAuthService struct {
	verifiers map[domain.AuthProvider]port.SocialTokenVerifier
	userRepo  port.UserRepository
	tokenSvc  TokenService
}

// NewSocialAuthService creates a new SocialAuthService.
func NewSocialAuthService(
	verifiers map[domain.AuthProvider]port.SocialTokenVerifier,
	userRepo port.UserRepository,
	tokenSvc TokenService,
) SocialAuthService {
	return &socialAuthService{
		verifiers: verifiers,
		userRepo:  userRepo,
		tokenSvc:  tokenSvc,
	}
}

func (s *socialAuthService) SignIn(ctx context.Context, input SocialSignInInput) (*SocialSignInOutput, error) {
	if !input.Provider.Valid() {
		return nil, domain.ErrUnsupportedProvider
	}
	verifier, ok := s.verifiers[input.Provider]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}

	claims, err := verifier.VerifyIDToken(ctx, input.RawToken)
	if err != nil {
		return nil, err
	}

	if input.Provider == domain.AuthProviderApple {
		claims.ApplyAppleProfile(input.Profile)
	}

	user, isNew, err := s.resolveOrCreate(ctx, claims)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenSvc.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	return &SocialSignInOutput{
		User:      user,
		Tokens:    tokens,
		IsNewUser: isNew,
	}, nil
}

// resolveOrCreate maps normalized claims to exactly one local user. The
// login path never writes; the signup path creates the user and its linked
// identity atomically and falls back to a lookup when it loses the creation
// race to a concurrent request.
func (s *socialAuthService) resolveOrCreate(ctx context.Context, claims *port.SocialAuthClaims) (*domain.User, bool, error) {
	existing, err := s.userRepo.GetByProviderSubject(ctx, claims.Provider, claims.Subject)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up linked identity: %w", err)
	}

	user := newUserFromClaims(claims)
	err = s.userRepo.CreateWithIdentity(ctx, user, claims.Provider, claims.Subject)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		return nil, false, fmt.Errorf("creating user: %w", err)
	}

	// Lost the race: another request created the identity between our lookup
	// and insert. The winner's user is authoritative.
	existing, err = s.userRepo.GetByProviderSubject(ctx, claims.Provider, claims.Subject)
	if err != nil {
		return nil, false, fmt.Errorf("recovering from creation race: %w", err)
	}
	return existing, false, nil
}

// newUserFromClaims builds the account record for a first-time sign-in.
// Missing email or name fields are acceptable; Apple private-relay addresses
// are ordinary emails here.
func newUserFromClaims(claims *port.SocialAuthClaims) *domain.User {
	uid := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]

	base := "user"
	if local, _, ok := strings.Cut(claims.Email, "@"); ok && local != "" {
		base = sanitizeUsername(local)
	}

	empty := json.RawMessage(`{}`)
	return &domain.User{
		UserUID:   uid,
		Username:  base + "-" + uid[:6],
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Role:      domain.RoleMember,
		MediaData: empty,
		OtherData: empty,
		UserData:  empty,
	}
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
