package domain

import (
	"errors"
	"time"
)

var ErrPostNotFound = errors.New("post not found")

type TriageStatus string

const (
	TriageNew     TriageStatus = "new"
	TriageIgnored TriageStatus = "ignored"
	TriageDone    TriageStatus = "done"
)

func (s TriageStatus) Valid() bool {
	switch s {
	case TriageNew, TriageIgnored, TriageDone:
		return true
	}
	return false
}

// Post is a Reddit post that matched one of a user's tags.
type Post struct {
	ID        string
	UserID    string
	TagID     string
	RedditID  string
	Subreddit string
	Title     string
	Body      *string // nil when the post has no selftext
	Author    string
	Permalink string
	Status    TriageStatus
	PostedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaggedPost is a post joined with its matched tag, as rendered in the
// digest email. Ordering comes from the query (tag, then post) and is
// preserved downstream.
type TaggedPost struct {
	PostID    string
	Title     string
	Body      *string
	Subreddit string
	Author    string
	TagName   string
	TagColor  string
}
