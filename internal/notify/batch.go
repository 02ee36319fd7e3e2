package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/email"
	"github.com/bendechrai/social-tracker/internal/metrics"
)

// DefaultCooldown is the minimum gap between two digests to one user.
const DefaultCooldown = 4 * time.Hour

// CandidateStore is the slice of the user repository the batch needs.
type CandidateStore interface {
	DigestCandidates(ctx context.Context, cooldown time.Duration) ([]domain.DigestCandidate, error)
	SetLastEmailedAt(ctx context.Context, id string, at time.Time) error
}

// PostSource yields the posts a user has not been notified about yet.
type PostSource interface {
	TaggedSinceLastDigest(ctx context.Context, userID string) ([]domain.TaggedPost, error)
}

// Result summarizes one batch run.
type Result struct {
	Sent    int
	Skipped int
}

// Batch sends one digest email per eligible user. Candidates are
// processed sequentially and independently: one user's failure never
// aborts the rest, and last_emailed_at moves only after a successful
// send. The job assumes a single running instance (cron-scheduled);
// it does not lock against concurrent invocations.
type Batch struct {
	users    CandidateStore
	posts    PostSource
	sender   email.Sender
	renderer *Renderer
	logger   *slog.Logger
	cooldown time.Duration
	now      func() time.Time
}

func NewBatch(users CandidateStore, posts PostSource, sender email.Sender, renderer *Renderer, logger *slog.Logger) *Batch {
	return &Batch{
		users:    users,
		posts:    posts,
		sender:   sender,
		renderer: renderer,
		logger:   logger.With("component", "digest_batch"),
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
}

// Run processes every eligible candidate once. A failing eligibility
// query is the only error that aborts the whole run; the scheduler is
// expected to log it and try again on its next tick.
func (b *Batch) Run(ctx context.Context) (Result, error) {
	start := b.now()
	defer func() {
		metrics.DigestBatchDuration.Observe(time.Since(start).Seconds())
	}()

	candidates, err := b.users.DigestCandidates(ctx, b.cooldown)
	if err != nil {
		return Result{}, fmt.Errorf("query digest candidates: %w", err)
	}

	b.logger.Info("digest batch started", "candidates", len(candidates))

	var result Result
	for _, c := range candidates {
		outcome := b.process(ctx, c)
		metrics.DigestsTotal.WithLabelValues(outcome).Inc()
		if outcome == "sent" {
			result.Sent++
		} else {
			result.Skipped++
		}
	}

	b.logger.Info("digest batch finished", "sent", result.Sent, "skipped", result.Skipped)
	return result, nil
}

func (b *Batch) process(ctx context.Context, c domain.DigestCandidate) (outcome string) {
	posts, err := b.posts.TaggedSinceLastDigest(ctx, c.ID)
	if err != nil {
		// A broken fetch for one user must not starve the others.
		b.logger.Error("fetch tagged posts", "user_id", c.ID, "error", err)
		return "fetch_failed"
	}

	if len(posts) == 0 {
		return "empty"
	}

	msg, err := b.renderer.Render(c.ID, posts)
	if err != nil {
		b.logger.Error("render digest", "user_id", c.ID, "error", err)
		return "render_failed"
	}

	if err := b.sender.Send(ctx, c.Email, msg.Subject, msg.HTML, msg.Text, msg.Headers); err != nil {
		// last_emailed_at stays put so the same posts are retried on
		// the next run.
		b.logger.Warn("send digest", "user_id", c.ID, "error", err)
		return "send_failed"
	}

	if err := b.users.SetLastEmailedAt(ctx, c.ID, b.now()); err != nil {
		// The email is already out; a failed write here means the user
		// may see these posts again next run. Log loudly, count as sent.
		b.logger.Error("update last_emailed_at", "user_id", c.ID, "error", err)
	}

	b.logger.Info("digest sent", "user_id", c.ID, "posts", len(posts))
	return "sent"
}
