package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

const tagColumns = `id, user_id, name, color, subreddit, terms, created_at, updated_at`

func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	query := `
		INSERT INTO tags (user_id, name, color, subreddit, terms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + tagColumns

	row := r.pool.QueryRow(ctx, query, tag.UserID, tag.Name, tag.Color, tag.Subreddit, tag.Terms)
	created, err := scanTag(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrTagNameConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *TagRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE user_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *TagRepository) ListAll(ctx context.Context) ([]*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags ORDER BY subreddit, created_at ASC`
	return r.list(ctx, query)
}

func (r *TagRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

func (r *TagRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func scanTag(row pgx.Row) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.Subreddit, &t.Terms, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &t, nil
}
