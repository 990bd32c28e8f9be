package service

import (
	"context"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

// complete dispatches the order notification, clears the cart and finishes
// the attempt. A failed notification is reported, never rolled back.
func (s *CheckoutServiceImpl) complete(ctx context.Context, id string) (*d.Attempt, error) {
	a, err := s.attempts.Get(id)
	if err != nil {
		return nil, err
	}
	if !d.CanTransitionTo(a.State, d.StateNotificationDispatched) {
		return a, &d.IllegalTransitionError{From: a.State, To: d.StateNotificationDispatched}
	}

	sent := s.notifier.Notify(ctx, a.Order)
	if !sent {
		s.log.WarnContext(ctx, "order placed without notification", "order_id", id, "error", ErrNotificationDelivery)
	}

	if _, err := s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateNotificationDispatched); err != nil {
			return err
		}
		a.WebhookSent = sent
		return nil
	}); err != nil {
		return nil, err
	}

	if _, err := s.cart.ClearCart(ctx, a.SessionID); err != nil {
		s.log.ErrorContext(ctx, "failed to clear cart after order", "order_id", id, "session_id", a.SessionID, "error", err)
	}

	done, err := s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateCompleted); err != nil {
			return err
		}
		if a.WebhookSent {
			a.Message = "Order placed"
		} else {
			a.Message = "Order placed, but the bakery was not notified automatically"
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, done.Order, sent)
	s.log.InfoContext(ctx, "checkout completed",
		"order_id", id,
		"payment_method", done.Order.PaymentMethod,
		"payment_status", done.Order.PaymentStatus,
		"total", done.Order.Summary.Total,
		"webhook_sent", sent)
	return done, nil
}

func (s *CheckoutServiceImpl) record(ctx context.Context, order *d.Order, webhookSent bool) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordOrder(ctx, order, webhookSent); err != nil {
		s.log.ErrorContext(ctx, "failed to record order", "order_id", order.OrderID, "error", err)
	}
}
