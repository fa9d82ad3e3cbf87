package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client caches derived cart and order summaries. Everything stored here is
// recomputable from line items, so entries are best-effort with a TTL.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) GetCart(ctx context.Context, customerID uint, dest interface{}) error {
	return c.get(ctx, cartKey(customerID), dest)
}

func (c *Client) SetCart(ctx context.Context, customerID uint, value interface{}, ttl time.Duration) error {
	return c.set(ctx, cartKey(customerID), value, ttl)
}

func (c *Client) DeleteCart(ctx context.Context, customerID uint) error {
	return c.rdb.Del(ctx, cartKey(customerID)).Err()
}

func (c *Client) GetOrder(ctx context.Context, orderID uint, dest interface{}) error {
	return c.get(ctx, orderKey(orderID), dest)
}

func (c *Client) SetOrder(ctx context.Context, orderID uint, value interface{}, ttl time.Duration) error {
	return c.set(ctx, orderKey(orderID), value, ttl)
}

func (c *Client) DeleteOrder(ctx context.Context, orderID uint) error {
	return c.rdb.Del(ctx, orderKey(orderID)).Err()
}

func (c *Client) get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("cache miss for %s", key)
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func cartKey(customerID uint) string {
	return fmt.Sprintf("cart_summary:%d", customerID)
}

func orderKey(orderID uint) string {
	return fmt.Sprintf("order_summary:%d", orderID)
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
