package domain

import "time"

// SessionToken describes the logical payload of an issued session token.
// The token itself is stateless: validity is reconstructed from its signed
// contents, never from a server-side session table.
type SessionToken struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
