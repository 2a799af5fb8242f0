package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocupmed/queue-api/internal/config"
	authHandler "github.com/ocupmed/queue-api/internal/handler/auth"
	displayHandler "github.com/ocupmed/queue-api/internal/handler/display"
	healthHandler "github.com/ocupmed/queue-api/internal/handler/health"
	operatorHandler "github.com/ocupmed/queue-api/internal/handler/operator"
	queueHandler "github.com/ocupmed/queue-api/internal/handler/queue"
	sessionHandler "github.com/ocupmed/queue-api/internal/handler/session"
	visitHandler "github.com/ocupmed/queue-api/internal/handler/visit"
	"github.com/ocupmed/queue-api/internal/middleware"
	"github.com/ocupmed/queue-api/internal/repository/postgres"
	"github.com/ocupmed/queue-api/internal/router"
	"github.com/ocupmed/queue-api/internal/service/access"
	authService "github.com/ocupmed/queue-api/internal/service/auth"
	"github.com/ocupmed/queue-api/internal/service/display"
	queueService "github.com/ocupmed/queue-api/internal/service/queue"
	"github.com/ocupmed/queue-api/internal/service/routing"
	sessionService "github.com/ocupmed/queue-api/internal/service/session"
	visitService "github.com/ocupmed/queue-api/internal/service/visit"
	"github.com/ocupmed/queue-api/pkg/auth"
	"github.com/ocupmed/queue-api/pkg/logger"
	"github.com/ocupmed/queue-api/pkg/messaging/redis"
	"github.com/ocupmed/queue-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback := logger.New(logger.Config{})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	visitRepo := postgres.NewVisitRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	billingRepo := postgres.NewBillingRepository(db)
	operatorRepo := postgres.NewOperatorRepository(db)

	// Redis message broker for visit-change and new-call fanout
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("ocupmed", "queue")

	// Services
	routingSvc := routing.NewService()
	policy := access.NewPolicy()
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(operatorRepo, jwtSvc)
	sessionSvc := sessionService.NewService(sessionRepo, billingRepo, log, m)
	queueSvc := queueService.NewService(visitRepo, sessionSvc, policy, broker, log, m)
	visitSvc := visitService.NewService(visitRepo, routingSvc, log)
	feed := display.NewFeed(visitRepo, broker, log, m, cfg.Queue.PollInterval(), cfg.Queue.HistoryWindow())

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc, operatorRepo)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		operatorHandler.NewHandler(authSvc),
		visitHandler.NewHandler(visitSvc),
		queueHandler.NewHandler(queueSvc),
		sessionHandler.NewHandler(sessionSvc),
		displayHandler.NewHandler(feed),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "queue_api",
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// The display feed runs in-process too; a deployment may instead
	// run cmd/worker next to several API replicas.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("queue API listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
