package config

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

var Ctx = context.Background()

// RedisClient is nil when Redis is not configured or unreachable; the
// rate limiter treats that as "limiting disabled".
var RedisClient *redis.Client

// ConnectRedis initializes the Redis client. A non-nil error leaves
// RedisClient nil.
func ConnectRedis() error {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		return fmt.Errorf("REDIS_ADDRESS not set")
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0, // default DB
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	RedisClient = client
	return nil
}
