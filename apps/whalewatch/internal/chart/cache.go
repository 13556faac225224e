package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"whalewatch/apps/whalewatch/internal/model"
)

type RedisCache struct {
	db *redis.Client
}

// NewRedisCache connects to redisURL, which may be host:port or a redis:// URL
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis %s: %w", opts.Addr, err)
	}

	return &RedisCache{db: rdb}, nil
}

func candlesKey(timeframe string) string {
	return "whalewatch:candles:" + timeframe
}

func (c *RedisCache) Get(ctx context.Context, timeframe string) ([]model.Candle, bool, error) {
	data, err := c.db.Get(ctx, candlesKey(timeframe)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get candles for %s: %w", timeframe, err)
	}

	var candles []model.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached candles: %w", err)
	}

	return candles, true, nil
}

func (c *RedisCache) Set(ctx context.Context, timeframe string, candles []model.Candle, ttl time.Duration) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("failed to marshal candles: %w", err)
	}

	if err := c.db.Set(ctx, candlesKey(timeframe), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set candles for %s: %w", timeframe, err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.db.Close()
}
