package http

import (
	"context"
	"net/http"
	"time"

	d "github.com/bakehouse/storefront/internal/checkout/domain"
	"github.com/bakehouse/storefront/internal/checkout/service"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	checkout service.CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type SubmitCheckoutRequestDTO struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	SpecialInstructions string `json:"special_instructions"`
	PaymentMethod       string `json:"payment_method"`
}

// ConfirmPaymentRequestDTO carries the fields the gateway's checkout modal
// hands back to the browser on success.
type ConfirmPaymentRequestDTO struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Summary is the entry guard for the checkout page. An empty cart answers
// 409 with a redirect hint.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot, err := h.checkout.Begin(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// Submit answers 201 for an order placed directly and 202 when the attempt
// is waiting on the payment gateway.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubmitCheckoutRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	form := d.CheckoutForm{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		Address:             req.Address,
		SpecialInstructions: req.SpecialInstructions,
	}
	attempt, err := h.checkout.Submit(ctx, SessionIDFromContext(r.Context()), form, d.PaymentMethod(req.PaymentMethod))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if attempt.State == d.StateGatewayPending {
		status = http.StatusAccepted
	}
	respondJSON(w, status, attempt)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	attempt, err := h.checkout.Get(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}

func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ConfirmPaymentRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	ref := d.GatewayRef{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	}
	attempt, err := h.checkout.ConfirmPayment(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "order_id"), ref)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}

func (h *CheckoutHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	attempt, err := h.checkout.DismissPayment(ctx, SessionIDFromContext(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}
