package session

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/prohmpiriya/event-storefront/pkg/redis"
)

// RedisPendingStore keeps slots in Redis with a TTL
type RedisPendingStore struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// NewRedisPendingStore creates a Redis-backed store
func NewRedisPendingStore(client *pkgredis.Client, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{client: client, ttl: ttl}
}

// Save writes the three keys in one transaction
func (s *RedisPendingStore) Save(ctx context.Context, sessionID string, p *PendingCheckout) error {
	values, err := encode(p)
	if err != nil {
		return err
	}
	keys := slotKeys(sessionID)

	pipe := s.client.TxPipeline()
	for i, k := range keys {
		pipe.Set(ctx, k, values[i], s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save pending checkout: %w", err)
	}
	return nil
}

// Load reads the three keys
func (s *RedisPendingStore) Load(ctx context.Context, sessionID string) (*PendingCheckout, error) {
	vals, err := s.client.MGet(ctx, slotKeys(sessionID)...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load pending checkout: %w", err)
	}

	str := func(v any) *string {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		return &s
	}
	return decode(str(vals[0]), str(vals[1]), str(vals[2]))
}

// Clear deletes the three keys
func (s *RedisPendingStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, slotKeys(sessionID)...).Err(); err != nil {
		return fmt.Errorf("failed to clear pending checkout: %w", err)
	}
	return nil
}
