package repository

import (
	"context"
	"time"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	SetNotifyEnabled(ctx context.Context, id string, enabled bool) error
	SetAIKeyCiphertext(ctx context.Context, id string, ciphertext *string) error

	// DigestCandidates returns users due for a digest: email verified,
	// notifications enabled, last_emailed_at NULL or older than cooldown.
	DigestCandidates(ctx context.Context, cooldown time.Duration) ([]domain.DigestCandidate, error)
	SetLastEmailedAt(ctx context.Context, id string, at time.Time) error
}
