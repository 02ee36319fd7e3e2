package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/email"
	"github.com/bendechrai/social-tracker/internal/repository"
	"github.com/bendechrai/social-tracker/internal/token"
)

const (
	defaultVerifyTTL = 24 * time.Hour
	defaultJWTTTL    = 24 * time.Hour
)

type AuthUsecase struct {
	users     repository.UserRepository
	email     email.Sender
	tokens    *token.Codec
	jwtKey    []byte
	verifyTTL time.Duration
	jwtTTL    time.Duration
	appURL    string
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, tokens *token.Codec, jwtKey []byte, appURL string) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		email:     emailSender,
		tokens:    tokens,
		jwtKey:    jwtKey,
		verifyTTL: defaultVerifyTTL,
		jwtTTL:    defaultJWTTTL,
		appURL:    appURL,
	}
}

// Signup creates the account and emails a verification link. The link
// carries a signed stateless token, so nothing extra is persisted.
// Delivery is best-effort: a failed send leaves the account unverified
// and the user can request another link by signing up again.
func (u *AuthUsecase) Signup(ctx context.Context, emailAddr, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, string(hash))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	verifyToken, err := u.tokens.Issue(user.ID, u.verifyTTL)
	if err != nil {
		return fmt.Errorf("mint verification token: %w", err)
	}

	link := u.appURL + "/api/verify-email?token=" + verifyToken
	subject := "Verify your Social Tracker email"
	html := fmt.Sprintf(
		`<p>Welcome to Social Tracker! Confirm your email address to start receiving tagged-post digests:</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	text := "Welcome to Social Tracker! Confirm your email address: " + link
	if err := u.email.Send(ctx, emailAddr, subject, html, text, nil); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// VerifyEmail validates the signed token from the link and marks the
// account verified.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	userID, _, ok := u.tokens.Verify(rawToken)
	if !ok {
		return domain.ErrTokenInvalid
	}
	if err := u.users.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// Login checks the password and returns a signed session JWT. Unknown
// email and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrBadCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrBadCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}
