package cache

import (
	"context"
	"errors"

	"github.com/bakehouse/storefront/internal/cart/domain"
)

// CartStore keeps one cart per session. Update applies fn to the stored cart
// (or a fresh one) atomically with respect to concurrent writers.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrConflict  = errors.New("cart modified concurrently")
)
