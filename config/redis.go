package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupRedisConnection returns nil when the cache is disabled.
func SetupRedisConnection(config Config) (*redis.Client, error) {
	if !config.Redis.Enabled {
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	return redisClient, nil
}
