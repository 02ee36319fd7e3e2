package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/bendechrai/social-tracker/internal/transport/http/handler"
	"github.com/bendechrai/social-tracker/internal/transport/http/middleware"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	tagHandler *handler.TagHandler,
	postHandler *handler.PostHandler,
	jwtKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public routes. Verify-email and unsubscribe carry their own signed
	// token, so they are reachable without a session.
	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/api/verify-email", authHandler.VerifyEmail)
	r.GET("/api/unsubscribe", accountHandler.Unsubscribe)
	r.POST("/api/unsubscribe", accountHandler.Unsubscribe)

	authMW := middleware.Auth(jwtKey)

	tags := r.Group("/tags", authMW)
	tags.POST("", tagHandler.Create)
	tags.GET("", tagHandler.List)
	tags.DELETE("/:id", tagHandler.Delete)

	posts := r.Group("/posts", authMW)
	posts.GET("", postHandler.List)
	posts.PATCH("/:id", postHandler.Triage)

	account := r.Group("/account", authMW)
	account.PUT("/notifications", accountHandler.SetNotifications)
	account.PUT("/ai-key", accountHandler.SetAIKey)

	return r
}
