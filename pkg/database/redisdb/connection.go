package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"loan-broker/pkg/config"
)

// Connect создаёт клиент и проверяет, что Redis отвечает.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", cfg.Address, err)
	}

	logger.Info("Подключено к Redis", zap.String("address", cfg.Address), zap.Int("db", cfg.DB))
	return client, nil
}
