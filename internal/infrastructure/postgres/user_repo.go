package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, email_verified, notify_enabled,
       ai_key_ciphertext, last_emailed_at, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query, email, passwordHash)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *UserRepository) SetNotifyEnabled(ctx context.Context, id string, enabled bool) error {
	return r.exec(ctx, `UPDATE users SET notify_enabled = $2, updated_at = NOW() WHERE id = $1`, id, enabled)
}

func (r *UserRepository) SetAIKeyCiphertext(ctx context.Context, id string, ciphertext *string) error {
	return r.exec(ctx, `UPDATE users SET ai_key_ciphertext = $2, updated_at = NOW() WHERE id = $1`, id, ciphertext)
}

func (r *UserRepository) DigestCandidates(ctx context.Context, cooldown time.Duration) ([]domain.DigestCandidate, error) {
	query := `
		SELECT id, email, last_emailed_at
		FROM users
		WHERE email_verified = TRUE
		  AND notify_enabled = TRUE
		  AND (last_emailed_at IS NULL OR last_emailed_at < NOW() - $1::interval)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, cooldown.String())
	if err != nil {
		return nil, fmt.Errorf("query digest candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.DigestCandidate
	for rows.Next() {
		var c domain.DigestCandidate
		if err := rows.Scan(&c.ID, &c.Email, &c.LastEmailedAt); err != nil {
			return nil, fmt.Errorf("scan digest candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *UserRepository) SetLastEmailedAt(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_emailed_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailVerified, &u.NotifyEnabled,
		&u.AIKeyCiphertext, &u.LastEmailedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
