package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bakehouse/storefront/internal/customorder/domain"
	"github.com/bakehouse/storefront/internal/customorder/repository"
	"github.com/google/uuid"
)

type CustomOrderService struct {
	repo repository.CustomOrderRepository
	now  func() time.Time
	log  *slog.Logger
}

func NewCustomOrderService(repo repository.CustomOrderRepository, log *slog.Logger) *CustomOrderService {
	if log == nil {
		log = slog.Default()
	}
	return &CustomOrderService{repo: repo, now: time.Now, log: log}
}

// Submit validates and stores a custom cake request. Validation failures are
// returned as *domain.ValidationError.
func (s *CustomOrderService) Submit(ctx context.Context, req domain.Request) (*domain.CustomOrder, error) {
	now := s.now()
	if err := req.Validate(now); err != nil {
		return nil, err
	}

	order, err := domain.NewCustomOrder(uuid.NewString(), req, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store custom order: %w", err)
	}

	s.log.InfoContext(ctx, "custom order received",
		"custom_order_id", order.ID,
		"event_type", order.EventType,
		"event_date", order.EventDate.Format(domain.EventDateLayout))
	return order, nil
}

func (s *CustomOrderService) List(ctx context.Context, limit int64) ([]*domain.CustomOrder, error) {
	return s.repo.List(ctx, limit)
}
