package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayushbridge/platform/pkg/common/config"
	"github.com/ayushbridge/platform/pkg/common/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared client for the batch summary cache. Cache
// writes are best-effort, so a failed ping is logged but not fatal.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Load()
		redisClient = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     4,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.WithError(err).Error("Failed to connect to Redis")
		} else {
			logger.Log.Info("Connected to Redis")
		}
	})

	return redisClient
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
