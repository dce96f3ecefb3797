package orderview

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medcart/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisCache implements Cache over Redis. Orders are stored under
// order:<id>; scope lists live under orders:<scope> and are dropped on
// every transition so readers refetch.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache creates a Redis-backed view cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ListCache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "orderview-cache").Logger(),
	}
}

// PutOrder stores a single order as JSON with the configured TTL.
func (c *redisCache) PutOrder(ctx context.Context, order *model.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", order.ID, err)
	}

	key := "order:" + order.ID.String()
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache order %s: %w", order.ID, err)
	}

	c.logger.Debug().Str("key", key).Msg("order cached")
	return nil
}

// InvalidateScopes drops the cached list for every scope.
func (c *redisCache) InvalidateScopes(ctx context.Context) error {
	keys := make([]string, 0, len(model.Scopes))
	for _, scope := range model.Scopes {
		keys = append(keys, "orders:"+string(scope))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate scope caches: %w", err)
	}

	c.logger.Debug().Strs("keys", keys).Msg("scope caches invalidated")
	return nil
}

// GetScopeList returns the cached list for a scope, or nil on a miss.
func (c *redisCache) GetScopeList(ctx context.Context, scope model.Scope) ([]*model.Order, error) {
	data, err := c.client.Get(ctx, "orders:"+string(scope)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scope cache %s: %w", scope, err)
	}

	var orders []*model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scope cache %s: %w", scope, err)
	}
	return orders, nil
}

// SetScopeList caches the list for a scope with the configured TTL.
func (c *redisCache) SetScopeList(ctx context.Context, scope model.Scope, orders []*model.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to marshal scope list %s: %w", scope, err)
	}

	if err := c.client.Set(ctx, "orders:"+string(scope), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache scope list %s: %w", scope, err)
	}
	return nil
}
