package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bendechrai/social-tracker/internal/domain"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, email, password string) error
	VerifyEmail(ctx context.Context, rawToken string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=10"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
			return
		}
		h.logger.Error("signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusCreated)
}

// POST /auth/login
// Returns {"token": "<jwt>"} on success, 401 on bad credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jwtToken, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errBadCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": jwtToken})
}

// GET /api/verify-email?token=<signed>
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	if err := h.authUsecase.VerifyEmail(c.Request.Context(), rawToken); err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.Error("verify email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}
