package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 10 * time.Minute

// RedisClient is the subset of the go-redis client the price cache uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// PriceCache keeps the latest persisted sample per symbol so the HTTP
// surface can answer without touching Postgres. Without Redis every
// call is a no-op.
type PriceCache struct {
	client RedisClient
}

// NewPriceCache wraps the shared Redis client. The concrete pointer is
// checked before it enters the interface field: a nil *redis.Client
// must leave the field nil, not a typed-nil that defeats the no-op
// guard.
func NewPriceCache(client *redis.Client) *PriceCache {
	c := &PriceCache{}
	if client != nil {
		c.client = client
	}
	return c
}

func (c *PriceCache) Set(ctx context.Context, symbol string, sample domain.PriceSample) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, priceKey(symbol), data, priceCacheTTL).Err()
}

func (c *PriceCache) Get(ctx context.Context, symbol string) (*domain.PriceSample, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, priceKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sample domain.PriceSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, err
	}
	return &sample, nil
}

func priceKey(symbol string) string {
	return fmt.Sprintf("price:latest:%s", symbol)
}
