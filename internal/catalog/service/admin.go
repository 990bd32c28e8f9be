package service

import (
	"context"

	"github.com/bakehouse/storefront/internal/catalog/domain"
)

// AdminProducts lists the product table newest first, as the admin panel shows it.
func (c *Catalog) AdminProducts(ctx context.Context) ([]*domain.Product, error) {
	return c.repo.ListProducts(ctx, true)
}

func (c *Catalog) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := c.repo.CreateProduct(ctx, p); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "product created", "product_id", p.ID)
	return c.Reload(ctx)
}

func (c *Catalog) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := c.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "product updated", "product_id", p.ID)
	return c.Reload(ctx)
}

func (c *Catalog) DeleteProduct(ctx context.Context, id string) error {
	if err := c.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.log.InfoContext(ctx, "product deleted", "product_id", id)
	return c.Reload(ctx)
}
