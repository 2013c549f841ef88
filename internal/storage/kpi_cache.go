package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radiusdt/vector-insights/internal/models"
)

// RedisKPICache stores KPI results as JSON with a TTL.
type RedisKPICache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKPICache creates a cache whose entries expire after ttl.
func NewRedisKPICache(client *redis.Client, ttl time.Duration) *RedisKPICache {
	return &RedisKPICache{client: client, ttl: ttl}
}

func (c *RedisKPICache) Get(ctx context.Context, key KPIKey) (*models.AggregatedKPI, bool, error) {
	b, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read kpi cache: %w", err)
	}

	var kpi models.AggregatedKPI
	if err := json.Unmarshal(b, &kpi); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached kpi: %w", err)
	}
	return &kpi, true, nil
}

func (c *RedisKPICache) Set(ctx context.Context, key KPIKey, kpi *models.AggregatedKPI) error {
	b, err := json.Marshal(kpi)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key.String(), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write kpi cache: %w", err)
	}
	return nil
}

// NoopKPICache never stores anything.
type NoopKPICache struct{}

func (NoopKPICache) Get(context.Context, KPIKey) (*models.AggregatedKPI, bool, error) {
	return nil, false, nil
}

func (NoopKPICache) Set(context.Context, KPIKey, *models.AggregatedKPI) error { return nil }
