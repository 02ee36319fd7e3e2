package repository

import (
	"context"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Tag, error)
	Delete(ctx context.Context, id, userID string) error

	// ListAll returns every tag across all users, for the poller.
	ListAll(ctx context.Context) ([]*domain.Tag, error)
}
