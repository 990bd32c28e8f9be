package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

// paymentSignal carries a gateway callback to the goroutine awaiting the
// payment. A nil ref means the shopper dismissed the payment modal.
type paymentSignal struct {
	ctx   context.Context
	ref   *d.GatewayRef
	reply chan signalResult
}

type signalResult struct {
	attempt *d.Attempt
	err     error
}

type paymentWait struct {
	signals chan paymentSignal
	done    chan struct{}
}

type paymentWaits struct {
	mu   sync.Mutex
	byID map[string]*paymentWait
}

func newPaymentWaits() *paymentWaits {
	return &paymentWaits{byID: make(map[string]*paymentWait)}
}

func (w *paymentWaits) add(id string) *paymentWait {
	w.mu.Lock()
	defer w.mu.Unlock()
	pw := &paymentWait{
		signals: make(chan paymentSignal),
		done:    make(chan struct{}),
	}
	w.byID[id] = pw
	return pw
}

func (w *paymentWaits) get(id string) (*paymentWait, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pw, ok := w.byID[id]
	return pw, ok
}

func (w *paymentWaits) remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.byID, id)
}

func (s *CheckoutServiceImpl) openGateway(ctx context.Context, a *d.Attempt) (*d.Attempt, error) {
	if !s.gateway.Configured() {
		s.log.ErrorContext(ctx, "payment gateway not configured", "order_id", a.ID)
		failed, _ := s.fail(a.ID, "Online payment is unavailable right now")
		return failed, ErrGatewayUnavailable
	}

	amount := d.MinorUnits(a.Order.Summary.Total)

	gatewayCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()
	gatewayOrderID, err := s.gateway.CreateOrder(gatewayCtx, a.ID, amount, s.cfg.Currency)
	if err != nil {
		s.log.ErrorContext(ctx, "gateway order creation failed", "order_id", a.ID, "error", err)
		failed, _ := s.fail(a.ID, "Online payment is unavailable right now")
		return failed, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	session := &d.GatewaySession{
		Key:            s.gateway.KeyID(),
		Amount:         amount,
		Currency:       s.cfg.Currency,
		Name:           s.cfg.MerchantName,
		Description:    fmt.Sprintf("Order #%s", a.ID),
		GatewayOrderID: gatewayOrderID,
		Prefill: d.Prefill{
			Name:    a.Order.Customer.Name,
			Email:   a.Order.Customer.Email,
			Contact: a.Order.Customer.Phone,
		},
		Theme: d.Theme{Color: s.cfg.ThemeColor},
	}

	wait := s.waits.add(a.ID)
	pending, err := s.attempts.Apply(a.ID, func(at *d.Attempt) error {
		if err := at.Transition(d.StateGatewayPending); err != nil {
			return err
		}
		at.Session = session
		return nil
	})
	if err != nil {
		s.waits.remove(a.ID)
		return nil, err
	}

	s.wg.Add(1)
	go s.awaitPayment(a.ID, wait)

	s.log.InfoContext(ctx, "awaiting gateway payment", "order_id", a.ID, "amount", amount, "gateway_order_id", gatewayOrderID)
	return pending, nil
}

// awaitPayment resolves a pending gateway payment exactly once: on the
// confirm or dismiss callback, or as a dismissal when the payment window lapses.
func (s *CheckoutServiceImpl) awaitPayment(id string, wait *paymentWait) {
	defer s.wg.Done()
	defer close(wait.done)
	defer s.waits.remove(id)

	timer := time.NewTimer(s.cfg.PaymentWindow)
	defer timer.Stop()

	select {
	case sig := <-wait.signals:
		ctx, cancel := context.WithTimeout(context.WithoutCancel(sig.ctx), s.cfg.CompletionTimeout)
		defer cancel()

		var res signalResult
		if sig.ref == nil {
			res.attempt, res.err = s.cancel(id, "Payment cancelled")
		} else {
			res.attempt, res.err = s.resolvePayment(ctx, id, *sig.ref)
		}
		sig.reply <- res
	case <-timer.C:
		if _, err := s.cancel(id, "Payment window expired"); err != nil {
			s.log.Error("failed to expire payment window", "order_id", id, "error", err)
			return
		}
		s.log.Info("payment window expired", "order_id", id, "error", ErrGatewayCancelled)
	case <-s.stop:
	}
}

func (s *CheckoutServiceImpl) ConfirmPayment(ctx context.Context, sessionID, orderID string, ref d.GatewayRef) (*d.Attempt, error) {
	if ref.PaymentID == "" {
		return nil, &ValidationError{Fields: map[string]string{"payment_id": "required"}}
	}
	return s.signal(ctx, sessionID, orderID, &ref)
}

func (s *CheckoutServiceImpl) DismissPayment(ctx context.Context, sessionID, orderID string) (*d.Attempt, error) {
	return s.signal(ctx, sessionID, orderID, nil)
}

func (s *CheckoutServiceImpl) signal(ctx context.Context, sessionID, orderID string, ref *d.GatewayRef) (*d.Attempt, error) {
	a, err := s.Get(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	if a.State != d.StateGatewayPending {
		return a, notPendingError(a)
	}

	wait, ok := s.waits.get(orderID)
	if !ok {
		return s.current(orderID)
	}

	sig := paymentSignal{ctx: ctx, ref: ref, reply: make(chan signalResult, 1)}
	select {
	case wait.signals <- sig:
	case <-wait.done:
		return s.current(orderID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Once handed off, the callback completes detached from ctx, so the
	// reply is awaited under the completion budget instead.
	timer := time.NewTimer(s.cfg.CompletionTimeout)
	defer timer.Stop()
	select {
	case res := <-sig.reply:
		return res.attempt, res.err
	case <-timer.C:
		return s.attempts.Get(orderID)
	}
}

// current reports an attempt whose payment wait has already been resolved.
func (s *CheckoutServiceImpl) current(orderID string) (*d.Attempt, error) {
	a, err := s.attempts.Get(orderID)
	if err != nil {
		return nil, err
	}
	return a, notPendingError(a)
}

func notPendingError(a *d.Attempt) error {
	if a.State == d.StateCancelled {
		return ErrGatewayCancelled
	}
	return fmt.Errorf("%w: attempt is %s", ErrIllegalTransition, a.State)
}

func (s *CheckoutServiceImpl) resolvePayment(ctx context.Context, id string, ref d.GatewayRef) (*d.Attempt, error) {
	a, err := s.attempts.Get(id)
	if err != nil {
		return nil, err
	}

	expected := ""
	if a.Session != nil {
		expected = a.Session.GatewayOrderID
	}
	if (expected != "" && ref.OrderID != expected) ||
		!s.gateway.VerifySignature(ref.OrderID, ref.PaymentID, ref.Signature) {
		s.log.WarnContext(ctx, "payment signature rejected", "order_id", id, "payment_id", ref.PaymentID)
		failed, err := s.attempts.Apply(id, func(a *d.Attempt) error {
			if err := a.Transition(d.StateFailed); err != nil {
				return err
			}
			a.Order.PaymentStatus = d.PaymentStatusFailed
			a.Message = "Payment could not be verified"
			return nil
		})
		if err != nil {
			return failed, err
		}
		return failed, ErrSignatureMismatch
	}

	if _, err := s.attempts.Apply(id, func(a *d.Attempt) error {
		a.Order.PaymentStatus = d.PaymentStatusCompleted
		a.Order.Gateway = &ref
		return nil
	}); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "gateway payment confirmed", "order_id", id, "payment_id", ref.PaymentID)

	return s.complete(ctx, id)
}

func (s *CheckoutServiceImpl) cancel(id, message string) (*d.Attempt, error) {
	return s.attempts.Apply(id, func(a *d.Attempt) error {
		if err := a.Transition(d.StateCancelled); err != nil {
			return err
		}
		a.Message = message
		return nil
	})
}
