// Package redis wraps go-redis with the service's connection settings.
package redis

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/event-storefront/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Nil is returned by reads of a missing key
const Nil = redis.Nil

// Client wraps a go-redis client
type Client struct {
	*redis.Client
}

// NewClient connects to Redis and verifies the connection with a PING
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	c := &Client{Client: rdb}
	if err := c.HealthCheck(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return c, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{Client: rdb}
}

// HealthCheck pings the server
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
