package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
	"github.com/bendechrai/social-tracker/internal/usecase"
)

type tagUsecaser interface {
	Create(ctx context.Context, input usecase.CreateTagInput) (*domain.Tag, error)
	List(ctx context.Context, userID string) ([]*domain.Tag, error)
	Delete(ctx context.Context, id, userID string) error
}

type TagHandler struct {
	tagUsecase tagUsecaser
	logger     *slog.Logger
}

func NewTagHandler(tagUsecase tagUsecaser, logger *slog.Logger) *TagHandler {
	return &TagHandler{tagUsecase: tagUsecase, logger: logger.With("component", "tag_handler")}
}

type createTagRequest struct {
	Name      string   `json:"name"      binding:"required,max=64"`
	Color     string   `json:"color"     binding:"omitempty,hexcolor"`
	Subreddit string   `json:"subreddit" binding:"required,max=64"`
	Terms     []string `json:"terms"     binding:"required,min=1,dive,max=128"`
}

type tagResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Subreddit string    `json:"subreddit"`
	Terms     []string  `json:"terms"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *TagHandler) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tagUsecase.Create(c.Request.Context(), usecase.CreateTagInput{
		UserID:    c.GetString("userID"),
		Name:      req.Name,
		Color:     req.Color,
		Subreddit: req.Subreddit,
		Terms:     req.Terms,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTagNameConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": errTagConflict})
			return
		}
		h.logger.Error("create tag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, toTagResponse(tag))
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tagUsecase.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.Error("list tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, toTagResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TagHandler) Delete(c *gin.Context) {
	err := h.tagUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errTagNotFound})
			return
		}
		h.logger.Error("delete tag", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

func toTagResponse(t *domain.Tag) tagResponse {
	return tagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		Subreddit: t.Subreddit,
		Terms:     t.Terms,
		CreatedAt: t.CreatedAt,
	}
}
