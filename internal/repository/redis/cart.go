package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
)

const keyPrefix = "cart:"

// CartRepository implements repository.CartRepository on the cart documents
// the storefront writes to Redis.
type CartRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client redis.UniversalClient, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the cart stored for an identity.
func (r *CartRepository) Get(ctx context.Context, identity string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, keyPrefix+identity).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

// Save stores a cart under its owner with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, identity string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+identity, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Clear removes the cart. Clearing a missing cart is not an error.
func (r *CartRepository) Clear(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, keyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
