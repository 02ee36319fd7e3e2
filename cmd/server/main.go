package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bendechrai/social-tracker/config"
	"github.com/bendechrai/social-tracker/internal/email"
	"github.com/bendechrai/social-tracker/internal/fieldcrypt"
	"github.com/bendechrai/social-tracker/internal/health"
	"github.com/bendechrai/social-tracker/internal/infrastructure/postgres"
	ctxlog "github.com/bendechrai/social-tracker/internal/log"
	"github.com/bendechrai/social-tracker/internal/metrics"
	"github.com/bendechrai/social-tracker/internal/token"
	httptransport "github.com/bendechrai/social-tracker/internal/transport/http"
	"github.com/bendechrai/social-tracker/internal/transport/http/handler"
	"github.com/bendechrai/social-tracker/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	signingKey, err := cfg.SigningKey()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cryptoKey, err := cfg.CryptoKey()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	codec, err := token.New(signingKey)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	box, err := fieldcrypt.New(cryptoKey)
	if err != nil {
		log.Fatalf("fieldcrypt: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	postRepo := postgres.NewPostRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, sender, codec, []byte(cfg.JWTSecret), cfg.AppURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	accountUsecase := usecase.NewAccountUsecase(userRepo, box, codec)
	accountHandler := handler.NewAccountHandler(accountUsecase, logger)

	tagUsecase := usecase.NewTagUsecase(tagRepo)
	tagHandler := handler.NewTagHandler(tagUsecase, logger)

	postUsecase := usecase.NewPostUsecase(postRepo)
	postHandler := handler.NewPostHandler(postUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, accountHandler, tagHandler, postHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
