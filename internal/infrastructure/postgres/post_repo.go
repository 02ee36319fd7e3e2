package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, user_id, tag_id, reddit_id, subreddit, title, body,
       author, permalink, status, posted_at, created_at, updated_at`

func (r *PostRepository) Upsert(ctx context.Context, post *domain.Post) (bool, error) {
	// The poller re-fetches overlapping listings; (tag_id, reddit_id)
	// dedupes them. Existing rows keep their triage status.
	query := `
		INSERT INTO posts (user_id, tag_id, reddit_id, subreddit, title, body,
		                   author, permalink, status, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tag_id, reddit_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		post.UserID, post.TagID, post.RedditID, post.Subreddit, post.Title,
		post.Body, post.Author, post.Permalink, domain.TriageNew, post.PostedAt)
	if err != nil {
		return false, fmt.Errorf("upsert post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string, status *domain.TriageStatus) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY posted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) SetStatus(ctx context.Context, id, userID string, status domain.TriageStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET status = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		id, userID, status)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) TaggedSinceLastDigest(ctx context.Context, userID string) ([]domain.TaggedPost, error) {
	// Posts stored after the user's last digest, joined with their tag.
	// Ordered by tag then post so the digest grouping is stable.
	query := `
		SELECT p.id, p.title, p.body, p.subreddit, p.author, t.name, t.color
		FROM posts p
		JOIN tags t  ON t.id = p.tag_id
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		  AND (u.last_emailed_at IS NULL OR p.created_at > u.last_emailed_at)
		ORDER BY t.created_at ASC, p.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query tagged posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.TaggedPost
	for rows.Next() {
		var p domain.TaggedPost
		if err := rows.Scan(&p.PostID, &p.Title, &p.Body, &p.Subreddit, &p.Author, &p.TagName, &p.TagColor); err != nil {
			return nil, fmt.Errorf("scan tagged post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.UserID, &p.TagID, &p.RedditID, &p.Subreddit, &p.Title,
		&p.Body, &p.Author, &p.Permalink, &p.Status, &p.PostedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &p, nil
}
