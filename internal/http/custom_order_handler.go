package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bakehouse/storefront/internal/customorder/domain"
)

const customOrderReceived = "Custom order request submitted successfully! We will contact you soon."

type CustomOrderSubmitter interface {
	Submit(ctx context.Context, req domain.Request) (*domain.CustomOrder, error)
}

type CustomOrderHandler struct {
	orders  CustomOrderSubmitter
	timeout time.Duration
}

func NewCustomOrderHandler(orders CustomOrderSubmitter, timeout time.Duration) *CustomOrderHandler {
	return &CustomOrderHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type CustomOrderResponse struct {
	ID      string        `json:"id"`
	Status  domain.Status `json:"status"`
	Message string        `json:"message"`
}

func (h *CustomOrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Request
	if err := decodeJSON(r, &req); err != nil {
		respondBadJSON(w, err)
		return
	}

	order, err := h.orders.Submit(ctx, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, CustomOrderResponse{
		ID:      order.ID,
		Status:  order.Status,
		Message: customOrderReceived,
	})
}
