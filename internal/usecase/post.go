package usecase

import (
	"context"
	"fmt"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/repository"
)

type PostUsecase struct {
	repo repository.PostRepository
}

func NewPostUsecase(repo repository.PostRepository) *PostUsecase {
	return &PostUsecase{repo: repo}
}

func (u *PostUsecase) List(ctx context.Context, userID string, status *domain.TriageStatus) ([]*domain.Post, error) {
	posts, err := u.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (u *PostUsecase) Triage(ctx context.Context, postID, userID string, status domain.TriageStatus) error {
	if err := u.repo.SetStatus(ctx, postID, userID, status); err != nil {
		return fmt.Errorf("triage post: %w", err)
	}
	return nil
}
