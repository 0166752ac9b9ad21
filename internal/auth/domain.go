package auth

import "time"

// Roles assignable to a user account. Exactly one is set per account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user account in the credential store.
type User struct {
	ID             int64
	Email          string
	Name           string
	PasswordHash   string
	Role           string
	IsActive       bool
	FirstLogin     bool
	StorageAccount string
	Container      string
	CreatedAt      time.Time
	LastLogin      *time.Time
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
