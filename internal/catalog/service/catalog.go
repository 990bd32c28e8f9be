package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bakehouse/storefront/internal/catalog/domain"
	"github.com/bakehouse/storefront/internal/catalog/repository"
)

// FeaturedLimit is how many featured products the home page shows.
const FeaturedLimit = 6

var ErrProductNotFound = repository.ErrProductNotFound

// Catalog serves shoppers from an in-memory snapshot of the product table.
// The snapshot is read-only for shoppers and is rebuilt after every admin write.
type Catalog struct {
	repo repository.RepoInterface
	log  *slog.Logger

	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
}

func NewCatalog(repo repository.RepoInterface, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		repo: repo,
		log:  log,
		byID: map[string]int{},
	}
}

// Reload replaces the snapshot with the current table contents.
func (c *Catalog) Reload(ctx context.Context) error {
	rows, err := c.repo.ListProducts(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	products := make([]domain.Product, len(rows))
	byID := make(map[string]int, len(rows))
	for i, p := range rows {
		products[i] = *p
		byID[p.ID] = i
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.mu.Unlock()

	c.log.InfoContext(ctx, "catalog loaded", "products", len(products))
	return nil
}

// List returns the products matching the category filter and search query in
// catalog order.
func (c *Catalog) List(category domain.Category, query string) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for i := range c.products {
		if c.products[i].Matches(category, query) {
			out = append(out, c.products[i])
		}
	}
	return out
}

func (c *Catalog) Featured(limit int) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Product
	for i := range c.products {
		if len(out) == limit {
			break
		}
		if c.products[i].Featured {
			out = append(out, c.products[i])
		}
	}
	return out
}

func (c *Catalog) Get(id string) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}
