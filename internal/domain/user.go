package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email is already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrTokenInvalid   = errors.New("token is invalid or expired")
)

type User struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	NotifyEnabled bool
	// AIKeyCiphertext holds the user's AI-provider API key, AES-GCM
	// encrypted before it reaches the database. Nil when unset.
	AIKeyCiphertext *string
	LastEmailedAt   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DigestCandidate is the projection of a user the notification batch
// works with. Eligibility (verified, notifications on, cooldown elapsed)
// is enforced by the query that produces these rows.
type DigestCandidate struct {
	ID            string
	Email         string
	LastEmailedAt *time.Time
}
