package repository

import (
	"context"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type PostRepository interface {
	// Upsert stores a matched post, ignoring duplicates of the same
	// reddit post for the same tag. Returns true when a new row was
	// inserted.
	Upsert(ctx context.Context, post *domain.Post) (bool, error)
	ListByUser(ctx context.Context, userID string, status *domain.TriageStatus) ([]*domain.Post, error)
	SetStatus(ctx context.Context, id, userID string, status domain.TriageStatus) error

	// TaggedSinceLastDigest returns the posts stored for userID after
	// the user's last digest, joined with their tags, ordered by tag
	// then post creation. The digest batch treats this list as exactly
	// the posts to notify about.
	TaggedSinceLastDigest(ctx context.Context, userID string) ([]domain.TaggedPost, error)
}
