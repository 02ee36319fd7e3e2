// Package reddit fetches new subreddit posts from a Reddit-mirror
// listing API. The mirror enforces a request budget advertised through
// X-Ratelimit headers; the client tracks it and waits out exhausted
// windows instead of burning retries on 429s.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry-go"

	"github.com/bendechrai/social-tracker/internal/metrics"
)

// Post is one listing entry as returned by the mirror API.
type Post struct {
	ID        string  `json:"id"`
	Subreddit string  `json:"subreddit"`
	Title     string  `json:"title"`
	Selftext  *string `json:"selftext"`
	Author    string  `json:"author"`
	Permalink string  `json:"permalink"`
	CreatedAt int64   `json:"created_utc"`
}

type listing struct {
	Posts []Post `json:"posts"`
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

// Client is safe for concurrent use; the rate-limit bookkeeping is the
// only shared state and sits behind a mutex.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	remaining int
	resetAt   time.Time
}

func NewClient(baseURL string, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   baseURL,
		client:    client,
		logger:    logger.With("component", "reddit_client"),
		now:       time.Now,
		remaining: -1, // unknown until the first response
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
}

// NewPosts returns up to limit newest posts in the subreddit. Transport
// errors, 429 and 5xx are retried with exponential backoff; other 4xx
// responses are terminal.
func (c *Client) NewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new?limit=%d", c.baseURL, url.PathEscape(subreddit), limit)

	var posts []Post
	err := retry.Do(
		func() error {
			if err := c.waitForBudget(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", "social-tracker/1.0")

			start := c.now()
			resp, err := c.client.Do(req)
			if err != nil {
				metrics.RedditRequestsTotal.WithLabelValues("error").Inc()
				c.logger.Warn("listing request failed, will retry",
					"subreddit", subreddit, "error", err)
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			c.trackRateLimit(resp.Header)
			metrics.RedditRequestDuration.Observe(time.Since(start).Seconds())
			metrics.RedditRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

			switch {
			case resp.StatusCode == http.StatusOK:
				// fallthrough to decode
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				c.logger.Warn("listing request throttled or failed upstream, will retry",
					"subreddit", subreddit, "status", resp.StatusCode)
				return &httpStatusError{status: resp.StatusCode}
			default:
				return retry.Unrecoverable(&httpStatusError{status: resp.StatusCode})
			}

			var l listing
			if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode listing: %w", err))
			}
			posts = l.Posts
			return nil
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.MaxDelay(time.Minute),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying listing fetch", "subreddit", subreddit, "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	return posts, nil
}

// waitForBudget blocks until the advertised rate-limit window allows
// another request.
func (c *Client) waitForBudget(ctx context.Context) error {
	c.mu.Lock()
	wait := time.Duration(0)
	if c.remaining == 0 && c.resetAt.After(c.now()) {
		wait = c.resetAt.Sub(c.now())
	}
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	c.logger.Info("rate limit exhausted, waiting for reset", "wait", wait)
	return c.sleep(ctx, wait)
}

func (c *Client) trackRateLimit(h http.Header) {
	// Reddit sends these as decimals ("59.0"); floor to whole requests.
	remainingF, err := strconv.ParseFloat(h.Get("X-Ratelimit-Remaining"), 64)
	if err != nil {
		return
	}
	resetSec, err := strconv.ParseFloat(h.Get("X-Ratelimit-Reset"), 64)
	if err != nil {
		return
	}
	remaining := int(math.Floor(remainingF))

	c.mu.Lock()
	c.remaining = remaining
	c.resetAt = c.now().Add(time.Duration(resetSec * float64(time.Second)))
	c.mu.Unlock()

	metrics.RedditRateLimitRemaining.Set(float64(remaining))
}
