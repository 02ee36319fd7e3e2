package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/notify"
	"github.com/bendechrai/social-tracker/internal/token"

	"log/slog"
	"os"
)

// ---- fakes ----

type fakeCandidateStore struct {
	digestCandidates func(ctx context.Context, cooldown time.Duration) ([]domain.DigestCandidate, error)
	setLastEmailedAt func(ctx context.Context, id string, at time.Time) error
}

func (s *fakeCandidateStore) DigestCandidates(ctx context.Context, cooldown time.Duration) ([]domain.DigestCandidate, error) {
	return s.digestCandidates(ctx, cooldown)
}

func (s *fakeCandidateStore) SetLastEmailedAt(ctx context.Context, id string, at time.Time) error {
	return s.setLastEmailedAt(ctx, id, at)
}

type fakePostSource struct {
	taggedSinceLastDigest func(ctx context.Context, userID string) ([]domain.TaggedPost, error)
}

func (s *fakePostSource) TaggedSinceLastDigest(ctx context.Context, userID string) ([]domain.TaggedPost, error) {
	return s.taggedSinceLastDigest(ctx, userID)
}

type fakeSender struct {
	send func(ctx context.Context, to, subject, html, text string, headers map[string]string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, html, text string, headers map[string]string) error {
	return s.send(ctx, to, subject, html, text, headers)
}

// ---- helpers ----

func newBatch(t *testing.T, users *fakeCandidateStore, posts *fakePostSource, sender *fakeSender) *notify.Batch {
	t.Helper()
	codec, err := token.New(testSigningKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return notify.NewBatch(users, posts, sender, notify.NewRenderer(codec, testAppURL), logger)
}

func candidates(ids ...string) func(context.Context, time.Duration) ([]domain.DigestCandidate, error) {
	return func(_ context.Context, _ time.Duration) ([]domain.DigestCandidate, error) {
		var cs []domain.DigestCandidate
		for _, id := range ids {
			cs = append(cs, domain.DigestCandidate{ID: id, Email: id + "@example.com"})
		}
		return cs, nil
	}
}

func onePost(_ context.Context, _ string) ([]domain.TaggedPost, error) {
	return []domain.TaggedPost{{PostID: "p1", Title: "hit", Subreddit: "golang", Author: "a", TagName: "Go", TagColor: "#123456"}}, nil
}

// ---- tests ----

func TestRun_NoPosts_SkipsWithoutSendingOrWriting(t *testing.T) {
	var sent, wrote bool

	users := &fakeCandidateStore{
		digestCandidates: candidates("user-1"),
		setLastEmailedAt: func(_ context.Context, _ string, _ time.Time) error {
			wrote = true
			return nil
		},
	}
	posts := &fakePostSource{
		taggedSinceLastDigest: func(_ context.Context, _ string) ([]domain.TaggedPost, error) {
			return nil, nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _, _ string, _ map[string]string) error {
			sent = true
			return nil
		},
	}

	result, err := newBatch(t, users, posts, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sent {
		t.Error("mail was sent for a user with zero posts")
	}
	if wrote {
		t.Error("last_emailed_at was written for a user with zero posts")
	}
	if result.Sent != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want {Sent:0 Skipped:1}", result)
	}
}

func TestRun_Success_SendsOnceAndUpdatesTimestamp(t *testing.T) {
	var sendCount int
	var wroteID string
	var wroteAt time.Time

	users := &fakeCandidateStore{
		digestCandidates: candidates("user-1"),
		setLastEmailedAt: func(_ context.Context, id string, at time.Time) error {
			wroteID, wroteAt = id, at
			return nil
		},
	}
	posts := &fakePostSource{taggedSinceLastDigest: onePost}
	sender := &fakeSender{
		send: func(_ context.Context, to, subject, _, _ string, headers map[string]string) error {
			sendCount++
			if to != "user-1@example.com" {
				t.Errorf("sent to %q", to)
			}
			if subject != "Social Tracker: 1 new tagged post" {
				t.Errorf("subject = %q", subject)
			}
			if headers["List-Unsubscribe"] == "" {
				t.Error("missing List-Unsubscribe header")
			}
			return nil
		},
	}

	before := time.Now()
	result, err := newBatch(t, users, posts, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sendCount != 1 {
		t.Errorf("send count = %d, want 1", sendCount)
	}
	if wroteID != "user-1" {
		t.Errorf("timestamp written for %q", wroteID)
	}
	if wroteAt.Before(before) {
		t.Errorf("timestamp %v not fresh", wroteAt)
	}
	if result.Sent != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want {Sent:1 Skipped:0}", result)
	}
}

func TestRun_SendFailure_NoTimestampUpdate(t *testing.T) {
	var wrote bool

	users := &fakeCandidateStore{
		digestCandidates: candidates("user-1"),
		setLastEmailedAt: func(_ context.Context, _ string, _ time.Time) error {
			wrote = true
			return nil
		},
	}
	posts := &fakePostSource{taggedSinceLastDigest: onePost}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _, _ string, _ map[string]string) error {
			return errors.New("smtp unavailable")
		},
	}

	result, err := newBatch(t, users, posts, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if wrote {
		t.Error("last_emailed_at was written despite send failure")
	}
	if result.Sent != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want {Sent:0 Skipped:1}", result)
	}
}

func TestRun_FetchFailure_SkipsUserAndContinues(t *testing.T) {
	var sentTo []string

	users := &fakeCandidateStore{
		digestCandidates: candidates("user-1", "user-2"),
		setLastEmailedAt: func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
	posts := &fakePostSource{
		taggedSinceLastDigest: func(ctx context.Context, userID string) ([]domain.TaggedPost, error) {
			if userID == "user-1" {
				return nil, errors.New("query timeout")
			}
			return onePost(ctx, userID)
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, to, _, _, _ string, _ map[string]string) error {
			sentTo = append(sentTo, to)
			return nil
		},
	}

	result, err := newBatch(t, users, posts, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sentTo) != 1 || sentTo[0] != "user-2@example.com" {
		t.Errorf("sent to %v, want only user-2", sentTo)
	}
	if result.Sent != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want {Sent:1 Skipped:1}", result)
	}
}

func TestRun_EligibilityQueryError_Propagates(t *testing.T) {
	queryErr := errors.New("db down")
	users := &fakeCandidateStore{
		digestCandidates: func(_ context.Context, _ time.Duration) ([]domain.DigestCandidate, error) {
			return nil, queryErr
		},
	}
	posts := &fakePostSource{}
	sender := &fakeSender{}

	_, err := newBatch(t, users, posts, sender).Run(context.Background())
	if !errors.Is(err, queryErr) {
		t.Errorf("want wrapped query error, got %v", err)
	}
}

func TestRun_TimestampWriteFailure_StillCountsAsSent(t *testing.T) {
	users := &fakeCandidateStore{
		digestCandidates: candidates("user-1"),
		setLastEmailedAt: func(_ context.Context, _ string, _ time.Time) error {
			return errors.New("write failed")
		},
	}
	posts := &fakePostSource{taggedSinceLastDigest: onePost}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _, _ string, _ map[string]string) error { return nil },
	}

	result, err := newBatch(t, users, posts, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Sent != 1 {
		t.Errorf("result = %+v, want Sent:1 (email already left)", result)
	}
}
