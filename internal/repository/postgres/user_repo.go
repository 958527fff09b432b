package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"huddl/internal/domain"
	"huddl/internal/port"
)

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByProviderSubject(ctx context.Context, provider domain.AuthProvider, subject string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT u.* FROM users u
		 JOIN linked_identities li ON li.user_id = u.id
		 WHERE li.provider = $1 AND li.subject = $2`,
		provider, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByProviderSubject: %w", err)
	}
	return &user, nil
}

// CreateWithIdentity inserts the user row and its linked identity in one
// transaction. The UNIQUE (provider, subject) constraint on linked_identities
// is the source of truth for the one-identity invariant: losing a concurrent
// race surfaces as domain.ErrDuplicateIdentity and nothing is committed.
func (r *userRepo) CreateWithIdentity(ctx context.Context, user *domain.User, provider domain.AuthProvider, subject string) error {
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("userRepo.CreateWithIdentity begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, user_uid, username, email, first_name, last_name, role,
			phone_number, media_data, other_data, user_data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		user.ID, user.UserUID, user.Username, user.Email, user.FirstName, user.LastName,
		user.Role, user.PhoneNumber, user.MediaData, user.OtherData, user.UserData,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("userRepo.CreateWithIdentity insert user: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO linked_identities (id, provider, subject, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (provider, subject) DO NOTHING`,
		uuid.New(), provider, subject, user.ID, now)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("userRepo.CreateWithIdentity insert identity: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		// Another request already linked this (provider, subject).
		return domain.ErrDuplicateIdentity
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("userRepo.CreateWithIdentity commit: %w", err)
	}
	return nil
}
