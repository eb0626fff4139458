package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/metrics"

	"github.com/goccy/go-json"
)

// Cache keys
const (
	KeyPlayersPrefix   = "players:"
	KeyPlayersAll      = KeyPlayersPrefix + "all"
	KeyPlayersTop10Fmt = KeyPlayersPrefix + "top10:%s"
	KeyLoginFailedFmt  = "ratelimit:signin:%s"

	// KeyPlayersGen counts player invalidations. It lives outside
	// KeyPlayersPrefix so that invalidation does not delete it.
	KeyPlayersGen = "gen:players"
)

// GetJSON retrieves a value from cache and unmarshals it as JSON.
func GetJSON(ctx context.Context, key string, dest any) error {
	val, err := Get(ctx, key)
	if err != nil {
		return err
	}
	if val == "" {
		return fmt.Errorf("empty value for key: %s", key)
	}
	return json.Unmarshal([]byte(val), dest)
}

// SetJSON marshals a value as JSON and stores it in cache.
func SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return Set(ctx, key, string(data), expiration)
}

// GetOrSet fills dest from the cache, or from fn on a miss and stores the
// result. Cache failures are logged and never fail the call; a zero
// expiration disables caching.
//
// Player keys are stored under the generation read before fn runs, so a
// result loaded before InvalidatePlayers is never served afterwards.
func GetOrSet[T any](ctx context.Context, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var dest T
	if expiration <= 0 || client == nil {
		return fn()
	}
	if strings.HasPrefix(key, KeyPlayersPrefix) {
		key = playersKey(ctx, key)
	}

	err := GetJSON(ctx, key, &dest)
	if err == nil {
		metrics.CacheHits.Inc()
		logger.Debugf("Cache hit for key: %s", key)
		return dest, nil
	}
	if !errors.Is(err, ErrMiss) {
		logger.Warningf("Cache read for key %s failed: %v", key, err)
	}

	metrics.CacheMisses.Inc()
	logger.Debugf("Cache miss for key: %s", key)
	value, err := fn()
	if err != nil {
		return value, err
	}

	if err := SetJSON(ctx, key, value, expiration); err != nil {
		logger.Warningf("Failed to set cache for key %s: %v", key, err)
	}
	return value, nil
}

// playersKey qualifies key with the current player generation.
func playersKey(ctx context.Context, key string) string {
	gen, err := Get(ctx, KeyPlayersGen)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Warningf("Cache read for key %s failed: %v", KeyPlayersGen, err)
		}
		gen = "0"
	}
	return key + "@" + gen
}

// InvalidatePlayers starts a new player generation and drops every cached
// player query.
func InvalidatePlayers(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, KeyPlayersGen).Err(); err != nil {
		logger.Warning("Failed to bump player cache generation:", err)
	}
	if err := DeletePattern(ctx, KeyPlayersPrefix+"*"); err != nil {
		logger.Warning("Failed to invalidate player cache:", err)
	}
}
