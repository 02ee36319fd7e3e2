package usecase

import (
	"context"
	"fmt"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/fieldcrypt"
	"github.com/bendechrai/social-tracker/internal/repository"
	"github.com/bendechrai/social-tracker/internal/token"
)

type AccountUsecase struct {
	users  repository.UserRepository
	box    *fieldcrypt.Box
	tokens *token.Codec
}

func NewAccountUsecase(users repository.UserRepository, box *fieldcrypt.Box, tokens *token.Codec) *AccountUsecase {
	return &AccountUsecase{users: users, box: box, tokens: tokens}
}

func (u *AccountUsecase) SetNotifications(ctx context.Context, userID string, enabled bool) error {
	if err := u.users.SetNotifyEnabled(ctx, userID, enabled); err != nil {
		return fmt.Errorf("set notifications: %w", err)
	}
	return nil
}

// SetAIKey stores the user's AI-provider API key encrypted at rest.
// An empty key clears the stored credential.
func (u *AccountUsecase) SetAIKey(ctx context.Context, userID, key string) error {
	if key == "" {
		if err := u.users.SetAIKeyCiphertext(ctx, userID, nil); err != nil {
			return fmt.Errorf("clear ai key: %w", err)
		}
		return nil
	}

	ciphertext, err := u.box.Encrypt(key)
	if err != nil {
		return fmt.Errorf("encrypt ai key: %w", err)
	}
	if err := u.users.SetAIKeyCiphertext(ctx, userID, &ciphertext); err != nil {
		return fmt.Errorf("store ai key: %w", err)
	}
	return nil
}

// Unsubscribe handles both the footer link and RFC 8058 one-click
// POSTs. The token is the only credential; no session is required.
func (u *AccountUsecase) Unsubscribe(ctx context.Context, rawToken string) error {
	userID, _, ok := u.tokens.Verify(rawToken)
	if !ok {
		return domain.ErrTokenInvalid
	}
	if err := u.users.SetNotifyEnabled(ctx, userID, false); err != nil {
		return fmt.Errorf("disable notifications: %w", err)
	}
	return nil
}
