package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
)

type accountUsecaser interface {
	SetNotifications(ctx context.Context, userID string, enabled bool) error
	SetAIKey(ctx context.Context, userID, key string) error
	Unsubscribe(ctx context.Context, rawToken string) error
}

type AccountHandler struct {
	accountUsecase accountUsecaser
	logger         *slog.Logger
}

func NewAccountHandler(accountUsecase accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
		logger:         logger.With("component", "account_handler"),
	}
}

type notificationsRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PUT /account/notifications
func (h *AccountHandler) SetNotifications(c *gin.Context) {
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.accountUsecase.SetNotifications(c.Request.Context(), userID, *req.Enabled); err != nil {
		h.logger.Error("set notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

type aiKeyRequest struct {
	Key string `json:"key"`
}

// PUT /account/ai-key
// An empty key clears the stored credential.
func (h *AccountHandler) SetAIKey(c *gin.Context) {
	var req aiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	if err := h.accountUsecase.SetAIKey(c.Request.Context(), userID, req.Key); err != nil {
		h.logger.Error("set ai key", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET|POST /api/unsubscribe?token=<signed>
// GET serves the footer link; POST serves RFC 8058 one-click clients.
// Both are unauthenticated: the signed token is the credential.
func (h *AccountHandler) Unsubscribe(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	if err := h.accountUsecase.Unsubscribe(c.Request.Context(), rawToken); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.Error("unsubscribe", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}
