package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// CartCache caches cart reads in Redis. Postgres stays the source of truth;
// every cart mutation invalidates the key.
type CartCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Set(ctx context.Context, cart *models.Cart) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(client *redis.Client, ttl time.Duration) CartCache {
	return &RedisCartCache{client: client, ttl: ttl}
}

func (c *RedisCartCache) key(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// Get returns (nil, nil) on a cache miss.
func (c *RedisCartCache) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart from cache: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached cart: %w", err)
	}
	return &cart, nil
}

func (c *RedisCartCache) Set(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return c.client.Set(ctx, c.key(cart.UserID), data, c.ttl).Err()
}

func (c *RedisCartCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}
