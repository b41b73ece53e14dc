package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"joyeria/backend/internal/domain"
)

type RedisRatesCache struct {
	client *redis.Client
}

func NewRedisRatesCache(addr string, password string, db int) *RedisRatesCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisRatesCache{client: client}
}

func (c *RedisRatesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRatesCache) Close() error {
	return c.client.Close()
}

func (c *RedisRatesCache) Get(ctx context.Context, key string) (*domain.PriceRates, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rates domain.PriceRates
	if err := json.Unmarshal([]byte(val), &rates); err != nil {
		return nil, false, err
	}
	return &rates, true, nil
}

func (c *RedisRatesCache) Set(ctx context.Context, key string, value *domain.PriceRates, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisRatesCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
