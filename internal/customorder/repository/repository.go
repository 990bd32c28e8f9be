package repository

import (
	"context"
	"errors"

	"github.com/bakehouse/storefront/internal/customorder/domain"
)

var (
	ErrNotFound  = errors.New("custom order not found")
	ErrDuplicate = errors.New("custom order already exists")
)

type CustomOrderRepository interface {
	Create(ctx context.Context, order *domain.CustomOrder) error
	Get(ctx context.Context, id string) (*domain.CustomOrder, error)
	List(ctx context.Context, limit int64) ([]*domain.CustomOrder, error)
}
