package models

import "time"

// PasswordResetToken is consumable exactly once: issuing a new token for a
// user marks all earlier unused ones used, and consumption flips Used inside
// the same transaction that rewrites the password hash.
type PasswordResetToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
