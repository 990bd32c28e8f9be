package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bakehouse/storefront/internal/orders/domain"
	"github.com/bakehouse/storefront/internal/orders/repository"
	"github.com/segmentio/kafka-go"
)

const eventOrderPlaced = "OrderPlaced"

var errMalformedEvent = errors.New("malformed order event")

// The event types below mirror the JSON the checkout outbox publishes. They
// are kept local so the consumer only depends on the wire format.
type eventItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type eventOrder struct {
	OrderID   string    `json:"order_id"`
	OrderDate time.Time `json:"order_date"`
	Customer  struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	} `json:"customer"`
	Items   []eventItem `json:"items"`
	Summary struct {
		Subtotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
	} `json:"summary"`
	SpecialInstructions string `json:"special_instructions"`
	PaymentMethod       string `json:"payment_method"`
	PaymentStatus       string `json:"payment_status"`
	Gateway             *struct {
		PaymentID string `json:"payment_id"`
	} `json:"gateway"`
}

type OrderPlacedEvent struct {
	OrderID     string      `json:"order_id"`
	Order       *eventOrder `json:"order"`
	WebhookSent bool        `json:"webhook_sent"`
	PlacedAt    time.Time   `json:"placed_at"`
}

const (
	minRetryInterval = time.Second
	maxRetryInterval = 30 * time.Second
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	repo   repository.OrderRepository
	reader MessageReader
	log    *slog.Logger

	retryMin time.Duration
	retryMax time.Duration
}

func NewConsumer(repo repository.OrderRepository, topic, groupID string, log *slog.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(repo, reader, log)
}

func newConsumer(repo repository.OrderRepository, reader MessageReader, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{
		repo:     repo,
		reader:   reader,
		log:      log,
		retryMin: minRetryInterval,
		retryMax: maxRetryInterval,
	}
}

// Run consumes until ctx is cancelled. An offset is committed only once its
// message is stored, already stored, or unreadable; store failures are
// retried in place so later offsets never commit past them.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.ErrorContext(ctx, "error fetching message", "error", err)
			continue
		}

		if !c.process(ctx, m) {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// redelivery is harmless, duplicates are skipped on insert
			c.log.ErrorContext(ctx, "failed to commit offset", "offset", m.Offset, "error", err)
		}
	}
}

// process handles m until it is done with. It returns false when ctx ends
// first, leaving the message uncommitted.
func (c *Consumer) process(ctx context.Context, m kafka.Message) bool {
	wait := c.retryMin
	for {
		err := c.handleMessage(ctx, m)
		if err == nil {
			return true
		}
		if errors.Is(err, errMalformedEvent) {
			c.log.ErrorContext(ctx, "dropping malformed order event",
				"key", string(m.Key), "offset", m.Offset, "error", err)
			return true
		}

		c.log.ErrorContext(ctx, "failed to store order event, retrying",
			"key", string(m.Key), "offset", m.Offset, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait = min(wait*2, c.retryMax)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handleMessage(ctx context.Context, m kafka.Message) error {
	if t := headerValue(m, "event_type"); t != "" && t != eventOrderPlaced {
		c.log.DebugContext(ctx, "skipping event", "event_type", t)
		return nil
	}

	var event OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if event.Order == nil || event.Order.OrderID == "" {
		return fmt.Errorf("%w: missing order", errMalformedEvent)
	}

	order := toOrder(&event)
	if err := c.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			c.log.InfoContext(ctx, "order already stored, skipping", "order_id", order.OrderID)
			return nil
		}
		return fmt.Errorf("create order %s: %w", order.OrderID, err)
	}

	c.log.InfoContext(ctx, "order stored", "order_id", order.OrderID, "total", order.Total)
	return nil
}

func toOrder(event *OrderPlacedEvent) *domain.Order {
	src := event.Order

	items := make([]domain.OrderItem, len(src.Items))
	for i, item := range src.Items {
		items[i] = domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}

	createdAt := src.OrderDate
	if createdAt.IsZero() {
		createdAt = event.PlacedAt
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	order := &domain.Order{
		OrderID:             src.OrderID,
		CustomerName:        src.Customer.Name,
		CustomerEmail:       src.Customer.Email,
		CustomerPhone:       src.Customer.Phone,
		DeliveryAddress:     src.Customer.Address,
		SpecialInstructions: src.SpecialInstructions,
		Items:               items,
		Subtotal:            src.Summary.Subtotal,
		Tax:                 src.Summary.Tax,
		Total:               src.Summary.Total,
		PaymentStatus:       src.PaymentStatus,
		PaymentMethod:       src.PaymentMethod,
		WebhookSent:         event.WebhookSent,
		CreatedAt:           createdAt,
	}
	if src.Gateway != nil {
		order.PaymentID = src.Gateway.PaymentID
	}
	return order
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
