// Package poller periodically pulls new subreddit posts and matches
// them against user tag terms.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/metrics"
	"github.com/bendechrai/social-tracker/internal/reddit"
)

// TagSource yields every tag to match against, across all users.
type TagSource interface {
	ListAll(ctx context.Context) ([]*domain.Tag, error)
}

// PostStore persists matched posts.
type PostStore interface {
	Upsert(ctx context.Context, post *domain.Post) (bool, error)
}

// Fetcher is satisfied by *reddit.Client.
type Fetcher interface {
	NewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
}

type Poller struct {
	tags    TagSource
	posts   PostStore
	fetcher Fetcher
	logger  *slog.Logger
	limit   int
}

func New(tags TagSource, posts PostStore, fetcher Fetcher, logger *slog.Logger, limit int) *Poller {
	return &Poller{
		tags:    tags,
		posts:   posts,
		fetcher: fetcher,
		logger:  logger.With("component", "poller"),
		limit:   limit,
	}
}

// RunOnce fetches each watched subreddit once and stores every post
// matching a tag term. A failing subreddit is logged and skipped so the
// remaining subreddits still get polled.
func (p *Poller) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.PollCycleDuration.Observe(time.Since(start).Seconds())
	}()

	tags, err := p.tags.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	// Fetch each subreddit once even when several tags watch it.
	bySubreddit := make(map[string][]*domain.Tag)
	for _, t := range tags {
		bySubreddit[t.Subreddit] = append(bySubreddit[t.Subreddit], t)
	}

	p.logger.Info("poll cycle started", "tags", len(tags), "subreddits", len(bySubreddit))

	var matched int
	for subreddit, watching := range bySubreddit {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		posts, err := p.fetcher.NewPosts(ctx, subreddit, p.limit)
		if err != nil {
			p.logger.Warn("fetch subreddit failed, skipping", "subreddit", subreddit, "error", err)
			continue
		}

		for _, rp := range posts {
			for _, tag := range watching {
				if !matches(tag, rp) {
					continue
				}
				inserted, err := p.posts.Upsert(ctx, &domain.Post{
					UserID:    tag.UserID,
					TagID:     tag.ID,
					RedditID:  rp.ID,
					Subreddit: rp.Subreddit,
					Title:     rp.Title,
					Body:      rp.Selftext,
					Author:    rp.Author,
					Permalink: rp.Permalink,
					PostedAt:  time.Unix(rp.CreatedAt, 0).UTC(),
				})
				if err != nil {
					p.logger.Error("store matched post", "subreddit", subreddit, "reddit_id", rp.ID, "error", err)
					continue
				}
				if inserted {
					matched++
					metrics.PostsMatchedTotal.Inc()
				}
			}
		}
	}

	p.logger.Info("poll cycle finished", "matched", matched)
	return nil
}

// matches reports whether any tag term occurs in the post's title or
// body, case-insensitively.
func matches(tag *domain.Tag, post reddit.Post) bool {
	title := strings.ToLower(post.Title)
	var body string
	if post.Selftext != nil {
		body = strings.ToLower(*post.Selftext)
	}
	for _, term := range tag.Terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		if strings.Contains(title, term) || strings.Contains(body, term) {
			return true
		}
	}
	return false
}
