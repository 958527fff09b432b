package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a local account. Social sign-in only ever creates or reads
// these rows; claims from a returning login never modify them.
type User struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserUID     string          `db:"user_uid" json:"user_uid"`
	Username    string          `db:"username" json:"username"`
	Email       string          `db:"email" json:"email"`
	FirstName   string          `db:"first_name" json:"first_name"`
	LastName    string          `db:"last_name" json:"last_name"`
	Role        UserRole        `db:"role" json:"role"`
	PhoneNumber string          `db:"phone_number" json:"phone_number"`
	MediaData   json.RawMessage `db:"media_data" json:"media_data"`
	OtherData   json.RawMessage `db:"other_data" json:"other_data"`
	UserData    json.RawMessage `db:"user_data" json:"user_data"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// LinkedIdentity binds one provider subject to exactly one local user.
// The (provider, subject) pair is unique across all rows and a row is never
// mutated after creation.
type LinkedIdentity struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Provider  AuthProvider `db:"provider" json:"provider"`
	Subject   string       `db:"subject" json:"subject"`
	UserID    uuid.UUID    `db:"user_id" json:"user_id"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
