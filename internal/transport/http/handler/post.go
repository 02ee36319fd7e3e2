package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type postUsecaser interface {
	List(ctx context.Context, userID string, status *domain.TriageStatus) ([]*domain.Post, error)
	Triage(ctx context.Context, postID, userID string, status domain.TriageStatus) error
}

type PostHandler struct {
	postUsecase postUsecaser
	logger      *slog.Logger
}

func NewPostHandler(postUsecase postUsecaser, logger *slog.Logger) *PostHandler {
	return &PostHandler{postUsecase: postUsecase, logger: logger.With("component", "post_handler")}
}

type postResponse struct {
	ID        string    `json:"id"`
	TagID     string    `json:"tag_id"`
	RedditID  string    `json:"reddit_id"`
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title"`
	Body      *string   `json:"body,omitempty"`
	Author    string    `json:"author"`
	Permalink string    `json:"permalink"`
	Status    string    `json:"status"`
	PostedAt  time.Time `json:"posted_at"`
}

// GET /posts?status=new|ignored|done
// Without the filter, all of the user's posts are returned.
func (h *PostHandler) List(c *gin.Context) {
	var status *domain.TriageStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.TriageStatus(raw)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + raw})
			return
		}
		status = &s
	}

	posts, err := h.postUsecase.List(c.Request.Context(), c.GetString("userID"), status)
	if err != nil {
		h.logger.Error("list posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, postResponse{
			ID:        p.ID,
			TagID:     p.TagID,
			RedditID:  p.RedditID,
			Subreddit: p.Subreddit,
			Title:     p.Title,
			Body:      p.Body,
			Author:    p.Author,
			Permalink: p.Permalink,
			Status:    string(p.Status),
			PostedAt:  p.PostedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

type triageRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /posts/:id
func (h *PostHandler) Triage(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := domain.TriageStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.Status})
		return
	}

	err := h.postUsecase.Triage(c.Request.Context(), c.Param("id"), c.GetString("userID"), status)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errPostNotFound})
			return
		}
		h.logger.Error("triage post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}
