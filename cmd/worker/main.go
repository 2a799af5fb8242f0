package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocupmed/queue-api/internal/config"
	"github.com/ocupmed/queue-api/internal/repository/postgres"
	"github.com/ocupmed/queue-api/internal/service/display"
	"github.com/ocupmed/queue-api/pkg/logger"
	"github.com/ocupmed/queue-api/pkg/messaging/redis"
	"github.com/ocupmed/queue-api/pkg/metrics"
)

// The worker runs the call display feed on its own, publishing new-call
// events for the passive screens while API replicas stay stateless.
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

	m := metrics.NewMetrics("ocupmed", "queue_worker")
	visitRepo := postgres.NewVisitRepository(db)
	feed := display.NewFeed(visitRepo, broker, log, m, cfg.Queue.PollInterval(), cfg.Queue.HistoryWindow())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go feed.Run(ctx)
	log.Info().Dur("interval", cfg.Queue.PollInterval()).Msg("display feed watcher started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down watcher...")
	cancel()
}
