package service

import (
	"errors"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition    = d.ErrIllegalTransition
	ErrSubmissionInFlight   = errors.New("a checkout is already in progress for this session")
	ErrAttemptNotFound      = errors.New("checkout attempt not found")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayCancelled     = errors.New("payment cancelled")
	ErrSignatureMismatch    = errors.New("payment signature does not verify")
	ErrNotificationDelivery = errors.New("order notification was not delivered")
)

type ValidationError = d.ValidationError
