package poller_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/poller"
	"github.com/bendechrai/social-tracker/internal/reddit"
)

// ---- fakes ----

type fakeTagSource struct {
	listAll func(ctx context.Context) ([]*domain.Tag, error)
}

func (s *fakeTagSource) ListAll(ctx context.Context) ([]*domain.Tag, error) {
	return s.listAll(ctx)
}

type fakePostStore struct {
	upsert func(ctx context.Context, post *domain.Post) (bool, error)
}

func (s *fakePostStore) Upsert(ctx context.Context, post *domain.Post) (bool, error) {
	return s.upsert(ctx, post)
}

type fakeFetcher struct {
	newPosts func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
}

func (f *fakeFetcher) NewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	return f.newPosts(ctx, subreddit, limit)
}

// ---- helpers ----

func newPoller(tags *fakeTagSource, posts *fakePostStore, fetcher *fakeFetcher) *poller.Poller {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return poller.New(tags, posts, fetcher, logger, 50)
}

func goTag() *domain.Tag {
	return &domain.Tag{
		ID:        "tag-1",
		UserID:    "user-1",
		Name:      "Go help",
		Subreddit: "golang",
		Terms:     []string{"goroutine", "channel"},
	}
}

// ---- tests ----

func TestRunOnce_StoresMatchingPosts(t *testing.T) {
	var stored []*domain.Post

	tags := &fakeTagSource{
		listAll: func(_ context.Context) ([]*domain.Tag, error) {
			return []*domain.Tag{goTag()}, nil
		},
	}
	posts := &fakePostStore{
		upsert: func(_ context.Context, p *domain.Post) (bool, error) {
			stored = append(stored, p)
			return true, nil
		},
	}
	body := "how do I close a channel safely?"
	fetcher := &fakeFetcher{
		newPosts: func(_ context.Context, subreddit string, _ int) ([]reddit.Post, error) {
			if subreddit != "golang" {
				t.Errorf("fetched unexpected subreddit %q", subreddit)
			}
			return []reddit.Post{
				{ID: "r1", Subreddit: "golang", Title: "Goroutine leak question", Author: "a"},
				{ID: "r2", Subreddit: "golang", Title: "unrelated", Selftext: &body, Author: "b"},
				{ID: "r3", Subreddit: "golang", Title: "nothing to see", Author: "c"},
			}, nil
		},
	}

	if err := newPoller(tags, posts, fetcher).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(stored) != 2 {
		t.Fatalf("stored %d posts, want 2 (title match + body match)", len(stored))
	}
	for _, p := range stored {
		if p.TagID != "tag-1" || p.UserID != "user-1" {
			t.Errorf("stored post with wrong ownership: %+v", p)
		}
		if p.Status != "" && p.Status != domain.TriageNew {
			t.Errorf("stored post with status %q", p.Status)
		}
	}
}

func TestRunOnce_FetchesEachSubredditOnce(t *testing.T) {
	fetches := map[string]int{}

	other := goTag()
	other.ID = "tag-2"
	other.UserID = "user-2"
	other.Terms = []string{"generics"}

	tags := &fakeTagSource{
		listAll: func(_ context.Context) ([]*domain.Tag, error) {
			return []*domain.Tag{goTag(), other}, nil
		},
	}
	posts := &fakePostStore{
		upsert: func(_ context.Context, _ *domain.Post) (bool, error) { return true, nil },
	}
	fetcher := &fakeFetcher{
		newPosts: func(_ context.Context, subreddit string, _ int) ([]reddit.Post, error) {
			fetches[subreddit]++
			return nil, nil
		},
	}

	if err := newPoller(tags, posts, fetcher).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fetches["golang"] != 1 {
		t.Errorf("fetched golang %d times, want 1", fetches["golang"])
	}
}

func TestRunOnce_FetchFailure_ContinuesWithOtherSubreddits(t *testing.T) {
	var stored int

	cats := goTag()
	cats.ID = "tag-2"
	cats.Subreddit = "cats"
	cats.Terms = []string{"kitten"}

	tags := &fakeTagSource{
		listAll: func(_ context.Context) ([]*domain.Tag, error) {
			return []*domain.Tag{goTag(), cats}, nil
		},
	}
	posts := &fakePostStore{
		upsert: func(_ context.Context, _ *domain.Post) (bool, error) {
			stored++
			return true, nil
		},
	}
	fetcher := &fakeFetcher{
		newPosts: func(_ context.Context, subreddit string, _ int) ([]reddit.Post, error) {
			if subreddit == "golang" {
				return nil, errors.New("mirror unavailable")
			}
			return []reddit.Post{{ID: "r1", Subreddit: "cats", Title: "kitten pics", Author: "a"}}, nil
		},
	}

	if err := newPoller(tags, posts, fetcher).RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored %d posts, want 1 from the healthy subreddit", stored)
	}
}

func TestRunOnce_TagListError_Propagates(t *testing.T) {
	listErr := errors.New("db down")
	tags := &fakeTagSource{
		listAll: func(_ context.Context) ([]*domain.Tag, error) { return nil, listErr },
	}
	posts := &fakePostStore{}
	fetcher := &fakeFetcher{}

	if err := newPoller(tags, posts, fetcher).RunOnce(context.Background()); !errors.Is(err, listErr) {
		t.Errorf("want wrapped list error, got %v", err)
	}
}
