package domain

import (
	"errors"
	"time"
)

var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagNameConflict = errors.New("tag with this name already exists")
)

// Tag is a named, colored set of search terms a user watches a
// subreddit with. A post matches a tag when any term occurs in its
// title or body.
type Tag struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	Subreddit string
	Terms     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
