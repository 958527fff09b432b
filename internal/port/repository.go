package port

import (
	"context"

	"github.com/google/uuid"

	"huddl/internal/domain"
)

// UserRepository persists local users and their linked provider identities.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetByProviderSubject returns the user owning the (provider, subject)
	// identity, or domain.ErrNotFound.
	GetByProviderSubject(ctx context.Context, provider domain.AuthProvider, subject string) (*domain.User, error)

	// CreateWithIdentity inserts the user and its linked identity as one
	// atomic unit. Returns domain.ErrDuplicateIdentity when the
	// (provider, subject) pair already exists; the storage-level uniqueness
	// constraint is the source of truth for that invariant.
	CreateWithIdentity(ctx context.Context, user *domain.User, provider domain.AuthProvider, subject string) error
}
