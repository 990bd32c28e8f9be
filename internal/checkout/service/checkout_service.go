package service

import (
	"context"
	"errors"
	"fmt"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

// Begin is the checkout entry guard. It refuses an empty cart and otherwise
// returns the order summary the shopper is about to submit.
func (s *CheckoutServiceImpl) Begin(ctx context.Context, sessionID string) (*d.CartSnapshot, error) {
	c, err := s.cart.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return d.NewCartSnapshot(c, s.cfg.Currency), nil
}

func (s *CheckoutServiceImpl) Submit(ctx context.Context, sessionID string, form d.CheckoutForm, method d.PaymentMethod) (*d.Attempt, error) {
	c, err := s.cart.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	attempt := d.NewAttempt(newOrderID(), sessionID, method)
	if err := s.attempts.Start(attempt); err != nil {
		s.log.WarnContext(ctx, "checkout rejected", "session_id", sessionID, "error", err)
		return nil, err
	}
	id := attempt.ID
	s.log.InfoContext(ctx, "checkout started", "order_id", id, "payment_method", method)

	_, err = s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateAwaitingSubmission); err != nil {
			return err
		}
		return a.Transition(d.StateValidatingForm)
	})
	if err != nil {
		return nil, err
	}

	if err := validateSubmission(form, method); err != nil {
		failed, _ := s.fail(id, "Please fill in all required fields")
		return failed, err
	}

	// totals come from this snapshot; later cart edits do not reach the order
	snapshot := d.NewCartSnapshot(c, s.cfg.Currency)
	built, err := s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateOrderBuilt); err != nil {
			return err
		}
		a.Order = d.NewOrder(a.ID, form.Trimmed(), snapshot, method)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if method == d.PaymentMethodCOP {
		return s.confirmDirect(ctx, id)
	}
	return s.openGateway(ctx, built)
}

func (s *CheckoutServiceImpl) Get(_ context.Context, sessionID, orderID string) (*d.Attempt, error) {
	a, err := s.attempts.Get(orderID)
	if err != nil {
		return nil, err
	}
	if a.SessionID != sessionID {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

func (s *CheckoutServiceImpl) confirmDirect(ctx context.Context, id string) (*d.Attempt, error) {
	if _, err := s.attempts.Apply(id, func(a *d.Attempt) error {
		return a.Transition(d.StateDirectConfirmed)
	}); err != nil {
		return nil, err
	}

	// the order is placed at this point; a dropped client must not cut the
	// notification or the cart clear short
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CompletionTimeout)
	defer cancel()
	return s.complete(ctx, id)
}

func (s *CheckoutServiceImpl) fail(id, message string) (*d.Attempt, error) {
	return s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateFailed); err != nil {
			return err
		}
		a.Message = message
		return nil
	})
}

func validateSubmission(form d.CheckoutForm, method d.PaymentMethod) error {
	err := form.Validate()
	if method.IsValid() {
		return err
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		ve = &ValidationError{Fields: map[string]string{}}
	}
	ve.Fields["payment_method"] = "must be razorpay or cop"
	return ve
}
