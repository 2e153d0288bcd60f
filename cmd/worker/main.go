package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"loan-broker/internal/listeners"
	"loan-broker/internal/repositories"
	"loan-broker/pkg/config"
	"loan-broker/pkg/database/postgresql"
	"loan-broker/pkg/database/redisdb"
	applogger "loan-broker/pkg/logger"
	"loan-broker/pkg/metrics"
)

// Воркер разбирает очередь подбора в Redis (MATCHING_DISPATCH=redis).
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File).Named("worker")
	defer logger.Sync()

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer dbConn.Close()

	redisClient, err := redisdb.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к Redis", zap.Error(err))
	}
	defer redisClient.Close()

	listener, err := listeners.NewMatchListenerFromConfig(dbConn, cfg.Matching, metrics.NewMetrics(), logger)
	if err != nil {
		logger.Fatal("Ошибка настройки подбора", zap.Error(err))
	}
	queue := repositories.NewRedisMatchQueue(redisClient, cfg.Matching.QueueKey)
	consumer := listeners.NewQueueConsumer(queue, listener, cfg.Matching.Workers, cfg.Matching.JobTimeout, logger)

	logger.Info("Воркер подбора запущен",
		zap.String("queue", cfg.Matching.QueueKey),
		zap.Int("workers", cfg.Matching.Workers),
	)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("Воркер остановлен с ошибкой", zap.Error(err))
		return
	}
	logger.Info("Воркер остановлен")
}
