// notifier runs the two background loops: the subreddit poller and the
// notification digest batch. Both fire on cron schedules from config.
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

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/bendechrai/social-tracker/config"
	"github.com/bendechrai/social-tracker/internal/email"
	"github.com/bendechrai/social-tracker/internal/health"
	"github.com/bendechrai/social-tracker/internal/infrastructure/postgres"
	ctxlog "github.com/bendechrai/social-tracker/internal/log"
	"github.com/bendechrai/social-tracker/internal/metrics"
	"github.com/bendechrai/social-tracker/internal/notify"
	"github.com/bendechrai/social-tracker/internal/poller"
	"github.com/bendechrai/social-tracker/internal/reddit"
	"github.com/bendechrai/social-tracker/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	signingKey, err := cfg.SigningKey()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	codec, err := token.New(signingKey)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	userRepo := postgres.NewUserRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	postRepo := postgres.NewPostRepository(pool)

	redditClient := reddit.NewClient(cfg.RedditAPIURL, &http.Client{Timeout: 30 * time.Second}, logger)
	pollRun := poller.New(tagRepo, postRepo, redditClient, logger, cfg.PollLimit)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	renderer := notify.NewRenderer(codec, cfg.AppURL)
	batch := notify.NewBatch(userRepo, postRepo, sender, renderer, logger)

	c := cron.New()

	if _, err := c.AddFunc(cfg.PollCron, func() {
		if err := pollRun.RunOnce(ctx); err != nil {
			logger.Error("poll cycle", "error", err)
		}
	}); err != nil {
		stop()
		log.Fatalf("poll cron %q: %v", cfg.PollCron, err)
	}

	if _, err := c.AddFunc(cfg.DigestCron, func() {
		if _, err := batch.Run(ctx); err != nil {
			logger.Error("digest batch", "error", err)
		}
	}); err != nil {
		stop()
		log.Fatalf("digest cron %q: %v", cfg.DigestCron, err)
	}

	c.Start()
	logger.Info("notifier started", "poll_cron", cfg.PollCron, "digest_cron", cfg.DigestCron)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	// Stop returns a context that completes when running jobs finish.
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("notifier shut down")
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
