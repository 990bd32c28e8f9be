package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrIllegalTransition = errors.New("illegal checkout transition")

// Attempt is one run of the checkout state machine for a session. Its ID is
// the order id it will produce.
type Attempt struct {
	ID          string          `json:"order_id"`
	SessionID   string          `json:"-"`
	State       CheckoutState   `json:"state"`
	Method      PaymentMethod   `json:"payment_method"`
	Order       *Order          `json:"order,omitempty"`
	Session     *GatewaySession `json:"gateway_session,omitempty"`
	WebhookSent bool            `json:"webhook_sent"`
	Message     string          `json:"message,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IllegalTransitionError reports a move the state machine does not allow.
type IllegalTransitionError struct {
	From CheckoutState
	To   CheckoutState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal checkout transition %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

func NewAttempt(id, sessionID string, method PaymentMethod) *Attempt {
	now := time.Now().UTC()
	return &Attempt{
		ID:        id,
		SessionID: sessionID,
		State:     StateIdle,
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Attempt) Transition(to CheckoutState) error {
	if !CanTransitionTo(a.State, to) {
		return &IllegalTransitionError{From: a.State, To: to}
	}
	a.State = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Attempt) Clone() *Attempt {
	cp := *a
	if a.Order != nil {
		cp.Order = a.Order.Clone()
	}
	if a.Session != nil {
		s := *a.Session
		cp.Session = &s
	}
	return &cp
}
