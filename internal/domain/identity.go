package domain

import "time"

// Identity is the decoded, validated view of a bearer credential's claims.
// It is derived state: recomputed by decoding the credential, never persisted
// on its own.
type Identity struct {
	Subject    string
	Role       Role
	FullName   string
	EmployeeID string
	UserID     int64
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
