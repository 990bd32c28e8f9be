package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bakehouse/storefront/internal/cart/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 5

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// RedisStore holds session carts as JSON under cart:<session id>. Every write
// pushes the expiry out by ttl, so a cart lives as long as its session is used.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return r.load(ctx, r.client, cacheKey(sessionID))
}

func (r *RedisStore) Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	key := cacheKey(sessionID)

	var updated *domain.Cart
	txf := func(tx *redis.Tx) error {
		cart, err := r.load(ctx, tx, key)
		if errors.Is(err, ErrCacheMiss) {
			cart = domain.NewCart(sessionID)
		} else if err != nil {
			return err
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart failed: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = cart
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("redis update failed: %w", err)
	}
	return nil, ErrConflict
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisStore) load(ctx context.Context, c getter, key string) (*domain.Cart, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
