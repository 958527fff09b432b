package domain

// AuthProvider identifies a third-party identity provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
)

// Valid reports whether the provider is one we support.
func (p AuthProvider) Valid() bool {
	return p == AuthProviderGoogle || p == AuthProviderApple
}

// UserRole defines the role assigned to a user account.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)
