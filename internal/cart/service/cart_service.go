package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bakehouse/storefront/internal/cart/cache"
	"github.com/bakehouse/storefront/internal/cart/domain"
	catalog "github.com/bakehouse/storefront/internal/catalog/domain"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// ProductLookup resolves a product id against the live catalog.
type ProductLookup interface {
	Get(id string) (catalog.Product, error)
}

type CartService struct {
	store   cache.CartStore
	catalog ProductLookup
	log     *slog.Logger
	sfg     singleflight.Group
}

func NewCartService(store cache.CartStore, catalog ProductLookup, log *slog.Logger) *CartService {
	if log == nil {
		log = slog.Default()
	}
	return &CartService{
		store:   store,
		catalog: catalog,
		log:     log,
	}
}

// GetCart returns the session's cart, or a fresh empty one if the session has
// none yet. The empty cart is not persisted.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.store.Get(ctx, sessionID)
		if errors.Is(err, cache.ErrCacheMiss) {
			return domain.NewCart(sessionID), nil
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "get cart failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	// callers sharing a flight must not share line storage
	return v.(*domain.Cart).Clone(), nil
}

func (s *CartService) AddToCart(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	p, err := s.catalog.Get(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	return s.update(ctx, sessionID, "add", func(c *domain.Cart) {
		c.AddToCart(p)
	})
}

func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	return s.update(ctx, sessionID, "remove", func(c *domain.Cart) {
		c.RemoveFromCart(productID)
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	return s.update(ctx, sessionID, "update quantity", func(c *domain.Cart) {
		c.UpdateQuantity(productID, quantity)
	})
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.update(ctx, sessionID, "clear", func(c *domain.Cart) {
		c.ClearCart()
	})
}

// EndSession drops the session's cart entirely.
func (s *CartService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.ErrorContext(ctx, "end session failed", "session_id", sessionID, "error", err)
		return err
	}
	return nil
}

func (s *CartService) update(ctx context.Context, sessionID, op string, fn func(*domain.Cart)) (*domain.Cart, error) {
	cart, err := s.store.Update(ctx, sessionID, func(c *domain.Cart) error {
		fn(c)
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "cart "+op+" failed", "session_id", sessionID, "error", err)
		return nil, err
	}
	s.log.DebugContext(ctx, "cart "+op, "session_id", sessionID, "count", cart.Count())
	return cart, nil
}
