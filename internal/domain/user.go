package domain

import "time"

// Role is the coarse authorization tier assigned to an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)

// DefaultRole is applied when an account has no role-assignment row.
const DefaultRole = RoleReader

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleReader
}

// User is the domain model for a registered account. PasswordHash never
// leaves the repository/service boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the client-safe projection of a user.
type UserView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role,omitempty"`
}

// View returns the public projection of the user.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// RoleAssignment records one account's authorization level.
type RoleAssignment struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
}
