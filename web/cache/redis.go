// Package cache provides the redis-backed cache used for player query results
// and sign-in rate limiting. It runs an embedded miniredis when no external
// server is configured.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

var (
	client     *redis.Client
	miniRedis  *miniredis.Miniredis
	isEmbedded = true
)

// InitRedis connects to cfg.RedisAddr, or starts an embedded server when it is empty.
func InitRedis(cfg config.CacheConfig) error {
	if cfg.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		miniRedis = mr
		client = redis.NewClient(&redis.Options{
			Addr: mr.Addr(),
		})
		isEmbedded = true
		logger.Info("Embedded Redis started on", mr.Addr())
		return nil
	}

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	isEmbedded = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Connected to external Redis at", cfg.RedisAddr)
	return nil
}

// IsEmbedded returns true if using embedded Redis.
func IsEmbedded() bool {
	return isEmbedded
}

// Close closes the Redis connection and stops embedded Redis if running.
func Close() error {
	if client != nil {
		if err := client.Close(); err != nil {
			return err
		}
		client = nil
	}
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
	}
	return nil
}

func ready() error {
	if client == nil {
		return errors.New("redis client not initialized")
	}
	return nil
}

// Set stores a value in Redis with expiration.
func Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := ready(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from Redis; a missing key yields ErrMiss.
func Get(ctx context.Context, key string) (string, error) {
	if err := ready(); err != nil {
		return "", err
	}
	result, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return result, err
}

// Delete removes a key from Redis.
func Delete(ctx context.Context, key string) error {
	if err := ready(); err != nil {
		return err
	}
	return client.Del(ctx, key).Err()
}

// DeletePattern removes all keys matching a pattern.
func DeletePattern(ctx context.Context, pattern string) error {
	if err := ready(); err != nil {
		return err
	}

	iter := client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return client.Del(ctx, keys...).Err()
	}
	return nil
}

// Incr increments the counter at key. The first increment starts a window
// after which the counter disappears.
func Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := ready(); err != nil {
		return 0, err
	}
	n, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
