package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/repository"
)

const defaultTagColor = "#6366f1"

type TagUsecase struct {
	repo repository.TagRepository
}

func NewTagUsecase(repo repository.TagRepository) *TagUsecase {
	return &TagUsecase{repo: repo}
}

type CreateTagInput struct {
	UserID    string
	Name      string
	Color     string
	Subreddit string
	Terms     []string
}

func (u *TagUsecase) Create(ctx context.Context, input CreateTagInput) (*domain.Tag, error) {
	if input.Color == "" {
		input.Color = defaultTagColor
	}

	terms := make([]string, 0, len(input.Terms))
	for _, t := range input.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}

	tag, err := u.repo.Create(ctx, &domain.Tag{
		UserID:    input.UserID,
		Name:      input.Name,
		Color:     input.Color,
		Subreddit: strings.TrimPrefix(input.Subreddit, "r/"),
		Terms:     terms,
	})
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func (u *TagUsecase) List(ctx context.Context, userID string) ([]*domain.Tag, error) {
	tags, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (u *TagUsecase) Delete(ctx context.Context, id, userID string) error {
	if err := u.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
